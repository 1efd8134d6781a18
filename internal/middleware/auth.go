package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/auth"
)

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	Verify(raw string) (uuid.UUID, error)
}

// NewAuthenticator returns a middleware that requires a valid bearer token
// and stores the user ID in the request context (see auth.UserID).
//
// The token is read from the Authorization header. Browsers cannot set
// headers on a WebSocket handshake, so a "token" query parameter is accepted
// as a fallback.
func NewAuthenticator(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			userID, err := v.Verify(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}
