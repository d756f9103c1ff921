// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tkoehler/objektverwaltung/internal/service"
)

type ctxKey string

const authKey ctxKey = "auth"

// SessionValidator resolves a bearer token to an identity. A nil result with
// a nil error means "not authenticated".
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*service.AuthContext, error)
}

// Authenticate enforces bearer-token authentication.
//
// It reads the Authorization header, resolves the token to a user exactly
// once, and stores the resolved AuthContext in the request context for
// downstream handlers. Requests without a valid session are rejected with
// 401 before reaching any handler.
func Authenticate(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			auth, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if auth == nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), authKey, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePasswordChanged blocks users still on a temporary password. Applied
// to everything except the auth endpoints, so a provisioned or reset account
// can do nothing but change its password.
func RequirePasswordChanged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := GetAuthContext(r.Context())
		if auth != nil && auth.NeedsPasswordChange {
			http.Error(w, "password change required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetAuthContext extracts the resolved identity from the request context.
// Returns nil if the request was not authenticated.
func GetAuthContext(ctx context.Context) *service.AuthContext {
	val := ctx.Value(authKey)
	if a, ok := val.(*service.AuthContext); ok {
		return a
	}
	return nil
}

// WithAuthContext returns a context carrying the given identity. Exposed for
// handler tests.
func WithAuthContext(ctx context.Context, auth *service.AuthContext) context.Context {
	return context.WithValue(ctx, authKey, auth)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
