package activity

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Activity, int64, error)
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

// ListActivity handles GET /activity?type=payment.approved
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r)
	filter := ListFilter{
		EventType: strings.TrimSpace(r.URL.Query().Get("type")),
		Limit:     limit,
		Offset:    offset,
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ActivitiesResponse{Activities: items, Total: total, Limit: limit, Offset: offset})
}
