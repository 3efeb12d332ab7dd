package payment

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	Submit(ctx context.Context, customerID int64, dto SubmitDTO, proof io.Reader) (*Payment, error)
	Record(ctx context.Context, staffID int64, dto RecordDTO) (*Payment, error)
	Approve(ctx context.Context, staffID, id int64, dto VerifyDTO) (*Payment, error)
	Reject(ctx context.Context, staffID, id int64, dto VerifyDTO) (*Payment, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	GetForCustomer(ctx context.Context, customerID, id int64) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]*Payment, int64, error)
	History(ctx context.Context, customerID int64, filter ListFilter) ([]*Payment, int64, error)
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

// SubmitPayment takes a multipart form with bill_id, payment_method_id and
// an optional proof image.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	file, ok := h.FormFile(w, r, "proof")
	if !ok {
		return
	}
	var proof io.Reader
	if file != nil {
		defer file.Close()
		proof = file
	}

	dto := SubmitDTO{
		BillID:          formInt64(r, "bill_id"),
		PaymentMethodID: formInt64(r, "payment_method_id"),
	}

	payment, err := h.Service.Submit(r.Context(), p.ID, dto, proof)
	if err != nil {
		h.Logger.Warn("SubmitPayment: service error", "error", err, "bill_id", dto.BillID, "customer_id", p.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto RecordDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	payment, err := h.Service.Record(r.Context(), p.ID, dto)
	if err != nil {
		h.Logger.Warn("RecordPayment: service error", "error", err, "bill_id", dto.BillID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.Service.Approve)
}

func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.Service.Reject)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, int64, VerifyDTO) (*Payment, error)) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto VerifyDTO
	if !h.DecodeOptionalJSON(w, r, &dto) {
		return
	}

	payment, err := fn(r.Context(), p.ID, id, dto)
	if err != nil {
		h.Logger.Warn("verify payment: service error", "error", err, "payment_id", id, "staff_id", p.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	filter.CustomerID = transport.QueryInt64Ptr(r, "customer_id")
	filter.BillID = transport.QueryInt64Ptr(r, "bill_id")

	payments, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PaymentsResponse{Payments: payments, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) GetMyPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.Service.GetForCustomer(r.Context(), p.ID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	filter := listFilter(r)
	filter.BillID = transport.QueryInt64Ptr(r, "bill_id")

	payments, total, err := h.Service.History(r.Context(), p.ID, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PaymentsResponse{Payments: payments, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func listFilter(r *http.Request) ListFilter {
	limit, offset := transport.Pagination(r)
	return ListFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
}

func formInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return n
}
