package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/transport"
)

// RBACAuthorization guards routes by capability. It must run behind
// AuthMiddleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, capability string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			ra.logger.Warn("authorization check failed: principal not found in context")
			ra.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !p.Can(capability) {
			ra.logger.WarnContext(r.Context(), "access denied: missing capability",
				"principal_id", p.ID,
				"principal_kind", p.Kind,
				"required_capability", capability)
			ra.WriteAppError(w, internal.ErrUnauthorizedAccess)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// Require returns chi-compatible middleware for a single capability.
func (ra *RBACAuthorization) Require(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, capability)
	}
}

// RequireStaff admits any staff principal regardless of role.
func (ra *RBACAuthorization) RequireStaff() func(http.Handler) http.Handler {
	return ra.requireKind(internal.PrincipalStaff)
}

func (ra *RBACAuthorization) RequireCustomer() func(http.Handler) http.Handler {
	return ra.requireKind(internal.PrincipalCustomer)
}

func (ra *RBACAuthorization) requireKind(kind internal.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if p.Kind != kind {
				ra.logger.WarnContext(r.Context(), "access denied: wrong account kind",
					"principal_id", p.ID, "principal_kind", p.Kind, "required_kind", kind)
				ra.WriteAppError(w, internal.ErrUnauthorizedAccess)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
