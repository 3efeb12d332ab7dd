package billing

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	CreateBill(ctx context.Context, actorID int64, dto CreateBillDTO) (*Bill, error)
	PreviousReading(ctx context.Context, customerID int64, month, year int) (*PreviousReading, error)
	Get(ctx context.Context, id int64, methodID *int64) (*Bill, error)
	GetForCustomer(ctx context.Context, customerID, id int64, methodID *int64) (*Bill, error)
	List(ctx context.Context, filter ListFilter) ([]*Bill, int64, error)
	ListForCustomer(ctx context.Context, customerID int64, filter ListFilter) ([]*Bill, int64, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateBillDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	bill, err := h.Service.CreateBill(r.Context(), p.ID, dto)
	if err != nil {
		h.Logger.Warn("CreateBill: service error", "error", err, "customer_id", dto.CustomerID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, bill)
}

// PreviousReading backs the bill form's opening reading preview.
func (h *Handler) PreviousReading(w http.ResponseWriter, r *http.Request) {
	customerID := transport.QueryInt64Ptr(r, "customer_id")
	var id int64
	if customerID != nil {
		id = *customerID
	}

	reading, err := h.Service.PreviousReading(r.Context(), id, transport.QueryInt(r, "month"), transport.QueryInt(r, "year"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reading)
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	bill, err := h.Service.Get(r.Context(), id, transport.QueryInt64Ptr(r, "payment_method_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	filter.CustomerID = transport.QueryInt64Ptr(r, "customer_id")
	filter.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	bills, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BillsResponse{Bills: bills, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p.ID, id); err != nil {
		h.Logger.Warn("DeleteBill: service error", "error", err, "bill_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMyBills(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	filter := listFilter(r)
	bills, total, err := h.Service.ListForCustomer(r.Context(), p.ID, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BillsResponse{Bills: bills, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) GetMyBill(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	bill, err := h.Service.GetForCustomer(r.Context(), p.ID, id, transport.QueryInt64Ptr(r, "payment_method_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, bill)
}

func listFilter(r *http.Request) ListFilter {
	limit, offset := transport.Pagination(r)
	return ListFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Month:  transport.QueryInt(r, "month"),
		Year:   transport.QueryInt(r, "year"),
		Limit:  limit,
		Offset: offset,
	}
}
