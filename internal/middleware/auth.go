package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/civigo/grievance-backend/internal/auth"
)

type authErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(authErrorResponse{Success: false, Message: message})
}

// RequireAuth is the access-control gate: it resolves the caller's
// identity from the Authorization header and attaches it to the request
// context. A missing token is 401; a token that fails verification is
// 403.
func RequireAuth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeAuthError(w, http.StatusUnauthorized, "Bearer token required")
				return
			}

			identity, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				if errors.Is(err, auth.ErrNoToken) {
					writeAuthError(w, http.StatusUnauthorized, "Bearer token required")
					return
				}
				writeAuthError(w, http.StatusForbidden, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireOfficial gates a route on the official role. Must run after
// RequireAuth.
func RequireOfficial(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authorization required")
			return
		}
		if !identity.IsOfficial() {
			writeAuthError(w, http.StatusForbidden, "Official role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
