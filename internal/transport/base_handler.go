package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/go-chi/chi"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain error response for failures raised in the handler
// itself (bad path params, unreadable bodies).
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	code := internal.ErrCodeValidationFailed
	typ := internal.ErrorTypeValidation
	switch {
	case status == http.StatusUnauthorized:
		code, typ = internal.ErrCodeInvalidToken, internal.ErrorTypeUnauthorized
	case status == http.StatusForbidden:
		code, typ = internal.ErrCodeUnauthorizedAccess, internal.ErrorTypeForbidden
	case status >= http.StatusInternalServerError:
		code, typ = "INTERNAL_ERROR", internal.ErrorTypeInternal
	}
	h.WriteAppError(w, &internal.AppError{Type: typ, Code: code, Message: message, StatusCode: status})
}

func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// HandleServiceError renders AppErrors with their own status; anything else
// is logged and reported as a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("internal error", "error", err)
			h.WriteAppError(w, &internal.AppError{
				Type:       appErr.Type,
				Code:       appErr.Code,
				Message:    appErr.Message,
				StatusCode: appErr.StatusCode,
			})
			return
		}
		h.WriteAppError(w, appErr)
		return
	}
	h.Logger.Error("unhandled service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

// DecodeJSON decodes the request body into dst and writes a 400 on failure.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// DecodeOptionalJSON is DecodeJSON for bodies that may be absent. An empty
// body, chunked or not, leaves dst untouched.
func (h *BaseHandler) DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	h.Logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
	h.WriteError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// maxMultipartMemory bounds what ParseMultipartForm keeps in memory; larger
// parts spill to temp files and the storage layer enforces the real limit.
const maxMultipartMemory = 8 << 20

// FormFile returns the named multipart file, or nil without writing anything
// when the part is absent. Malformed multipart bodies get a 400.
func (h *BaseHandler) FormFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.Logger.Warn("invalid multipart body", "path", r.URL.Path, "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart body")
		return nil, false
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, true
	}
	return file, true
}

// PathID parses a positive int64 chi URL param.
func (h *BaseHandler) PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// Principal returns the authenticated caller or writes a 401.
func (h *BaseHandler) Principal(w http.ResponseWriter, r *http.Request) (*internal.Principal, bool) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

// Pagination reads limit/offset query params, clamping limit to MaxPageLimit.
func Pagination(r *http.Request) (limit, offset int) {
	limit = DefaultPageLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= MaxPageLimit {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

// QueryInt returns the integer query param or 0 when absent or malformed.
func QueryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	return n
}

// QueryInt64Ptr returns nil when the param is absent or not a positive integer.
func QueryInt64Ptr(r *http.Request, name string) *int64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// ListResponse is the envelope for paginated collections.
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
