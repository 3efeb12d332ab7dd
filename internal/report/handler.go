package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/frahmantamala/petirpay/internal/transport"
)

type ServiceAPI interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Series(ctx context.Context) ([]MonthlyRevenue, error)
	Export(ctx context.Context, month, year int, w io.Writer) error
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

// GetDashboard handles GET /reports/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) GetRevenueSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.Service.Series(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"series": series})
}

// ExportBills handles GET /reports/bills/export?month=&year=
// The workbook is buffered by the service call so a failure can still be
// reported as JSON.
func (h *Handler) ExportBills(w http.ResponseWriter, r *http.Request) {
	month := transport.QueryInt(r, "month")
	year := transport.QueryInt(r, "year")

	var buf bytes.Buffer
	if err := h.Service.Export(r.Context(), month, year, &buf); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bills-%04d-%02d.xlsx"`, year, month))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Logger.Warn("failed to write export", "error", err)
	}
}
