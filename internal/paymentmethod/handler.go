package paymentmethod

import (
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, activeOnly bool) ([]*PaymentMethod, error)
	Get(ctx context.Context, id int64) (*PaymentMethod, error)
	Create(ctx context.Context, dto PaymentMethodDTO) (*PaymentMethod, error)
	Update(ctx context.Context, id int64, dto PaymentMethodDTO) (*PaymentMethod, error)
	UploadLogo(ctx context.Context, id int64, r io.Reader) (*PaymentMethod, error)
	Delete(ctx context.Context, id int64) error
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

// ListActive is what customers see when choosing how to pay.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("active") == "true")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	methods, err := h.Service.List(r.Context(), activeOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PaymentMethodsResponse{PaymentMethods: methods})
}

func (h *Handler) GetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	m, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var dto PaymentMethodDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	m, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreatePaymentMethod: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto PaymentMethodDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	m, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.Logger.Warn("UpdatePaymentMethod: service error", "error", err, "payment_method_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	file, ok := h.FormFile(w, r, "logo")
	if !ok {
		return
	}
	if file == nil {
		h.WriteError(w, http.StatusBadRequest, "logo is required")
		return
	}
	defer file.Close()

	m, err := h.Service.UploadLogo(r.Context(), id, file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Warn("DeletePaymentMethod: service error", "error", err, "payment_method_id", id)
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
