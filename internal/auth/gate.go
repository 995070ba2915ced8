package auth

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const identityContextKey contextKey = "admin"

// Identity is the administrator bound to the current request.
type Identity struct {
	AdminID   string
	SessionID string
	ExpiresAt time.Time
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the active identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// IsActive reports whether an administrator is bound to ctx.
func IsActive(ctx context.Context) bool {
	return IdentityFromContext(ctx) != nil
}

// Gate redirects requests to the landing page based on whether an
// administrator is active. It never rejects with an error status.
type Gate struct {
	landing string
	active  func(r *http.Request) bool
}

// NewGate creates a gate that redirects to landing and reads the active
// identity from the request context.
func NewGate(landing string) *Gate {
	return &Gate{
		landing: landing,
		active:  func(r *http.Request) bool { return IsActive(r.Context()) },
	}
}

// RequireAuthenticated runs next only when an administrator is active.
func (g *Gate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.active(r) {
			http.Redirect(w, r, g.landing, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous runs next only when no administrator is active.
func (g *Gate) RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.active(r) {
			http.Redirect(w, r, g.landing, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
