package tariff

import (
	"context"
	"net/http"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Tariff, error)
	Get(ctx context.Context, id int64) (*Tariff, error)
	Create(ctx context.Context, dto TariffDTO) (*Tariff, error)
	Update(ctx context.Context, id int64, dto TariffDTO) (*Tariff, error)
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

func (h *Handler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	tariffs, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("ListTariffs: failed to list tariffs", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TariffsResponse{Tariffs: tariffs})
}

func (h *Handler) GetTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTariff(w http.ResponseWriter, r *http.Request) {
	var dto TariffDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	t, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreateTariff: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto TariffDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	t, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.Logger.Warn("UpdateTariff: service error", "error", err, "tariff_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Warn("DeleteTariff: service error", "error", err, "tariff_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
