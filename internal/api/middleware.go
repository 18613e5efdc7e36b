// Package api implements the inventory REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/itam/internal/session"
)

// Authenticator resolves a bearer token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Identity, error)
}

// AuthMiddleware returns middleware that resolves the caller.
// If enabled is false, every request runs as the given fallback identity
// (disabled mode). If enabled is true, a request carrying
// "Authorization: Bearer <token>" must present a valid token; requests
// without the header proceed anonymously and the service decides.
func AuthMiddleware(enabled bool, auth Authenticator, fallback session.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), fallback)))
				return
			}
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeJSON(w, http.StatusUnauthorized, errorBody("Invalid token"))
				return
			}
			id, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, r, "", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

// bearerToken returns the raw token of the request, if any.
func bearerToken(r *http.Request) string {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token
}
