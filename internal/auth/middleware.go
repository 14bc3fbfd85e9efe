package auth

import (
	"context"
	"net/http"
	"strings"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ProfileID string
	Role      string
}

type principalKey struct{}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored on ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ErrorWriter renders an auth failure.
type ErrorWriter func(w http.ResponseWriter, status int, message string)

// Middleware guards handlers with bearer tokens.
type Middleware struct {
	issuer  *Issuer
	onError ErrorWriter
}

// NewMiddleware builds token middleware.
func NewMiddleware(issuer *Issuer, onError ErrorWriter) *Middleware {
	return &Middleware{issuer: issuer, onError: onError}
}

// Authenticated requires a valid bearer token.
func (m *Middleware) Authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := m.principal(r)
		if !ok {
			m.onError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), p)))
	}
}

// RequireRole requires a valid bearer token carrying role.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		if p.Role != role {
			m.onError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	})
}

func (m *Middleware) principal(r *http.Request) (Principal, bool) {
	header := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return Principal{}, false
	}
	claims, err := m.issuer.Verify(strings.TrimSpace(raw))
	if err != nil {
		return Principal{}, false
	}
	return Principal{ProfileID: claims.Subject, Role: claims.Role}, true
}
