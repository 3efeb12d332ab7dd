package staff

import (
	"context"
	"net/http"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, limit, offset int) ([]*Account, int64, error)
	Get(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, dto CreateDTO) (*Account, error)
	Update(ctx context.Context, id int64, dto UpdateDTO) (*Account, error)
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

// GetCurrentStaff handles GET /staff/me
func (h *Handler) GetCurrentStaff(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	account, err := h.Service.Get(r.Context(), p.ID)
	if err != nil {
		h.Logger.Error("GetCurrentStaff: service Get failed", "staff_id", p.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r)

	accounts, total, err := h.Service.List(r.Context(), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AccountsResponse{Accounts: accounts, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	account, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	account, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreateStaff: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	account, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.Logger.Warn("UpdateStaff: service error", "error", err, "staff_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Warn("DeleteStaff: service error", "error", err, "staff_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
