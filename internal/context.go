package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "principal"

// Principal is the authenticated caller attached to a request context.
// Kind tells staff accounts and customers apart since their ids share no
// namespace.
type Principal struct {
	ID           int64
	Kind         PrincipalKind
	Email        string
	Name         string
	Role         string
	Capabilities []string
}

type PrincipalKind string

const (
	PrincipalStaff    PrincipalKind = "staff"
	PrincipalCustomer PrincipalKind = "customer"
)

func (p *Principal) Can(capability string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

func (p *Principal) IsCustomer() bool {
	return p != nil && p.Kind == PrincipalCustomer
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextUserKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextUserKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
