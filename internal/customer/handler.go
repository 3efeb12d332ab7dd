package customer

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*Customer, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]*Customer, int64, error)
	Update(ctx context.Context, id int64, dto UpdateDTO) (*Customer, error)
	UpdateProfile(ctx context.Context, id int64, dto ProfileDTO) (*Customer, error)
	UploadPhoto(ctx context.Context, id int64, r io.Reader) (*Customer, error)
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

// Register is the public sign-up endpoint.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Register: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto ProfileDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.UpdateProfile(r.Context(), p.ID, dto)
	if err != nil {
		h.Logger.Warn("UpdateMe: service error", "error", err, "customer_id", p.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UploadMyPhoto(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	file, ok := h.FormFile(w, r, "photo")
	if !ok {
		return
	}
	if file == nil {
		h.WriteError(w, http.StatusBadRequest, "photo is required")
		return
	}
	defer file.Close()

	c, err := h.Service.UploadPhoto(r.Context(), p.ID, file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r)
	filter := ListFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		TariffID: transport.QueryInt64Ptr(r, "tariff_id"),
		Limit:    limit,
		Offset:   offset,
	}

	customers, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.ListResponse{Items: customers, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreateCustomer: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.Logger.Warn("UpdateCustomer: service error", "error", err, "customer_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Warn("DeleteCustomer: service error", "error", err, "customer_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
