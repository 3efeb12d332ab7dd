package auth

import (
	"net/http"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/transport"
	"github.com/frahmantamala/petirpay/pkg/logger"
)

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

// LoginStaff handles POST /auth/staff/login
func (h *Handler) LoginStaff(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, internal.PrincipalStaff)
}

// LoginCustomer handles POST /auth/customer/login
func (h *Handler) LoginCustomer(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, internal.PrincipalCustomer)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, kind internal.PrincipalKind) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	tokens, err := h.Service.Login(r.Context(), kind, dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "kind", kind, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout is stateless: tokens simply expire. It still rejects bad tokens so
// clients notice a broken session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.Authenticate(r.Context(), token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me for either account kind.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":           p.ID,
		"kind":         p.Kind,
		"email":        p.Email,
		"name":         p.Name,
		"role":         p.Role,
		"capabilities": p.Capabilities,
	})
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		principal, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Warn("token validation failed", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "principal_id", principal.ID, "principal_kind", principal.Kind)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
