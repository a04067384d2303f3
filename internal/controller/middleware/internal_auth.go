package middleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireInternalAuth middleware ensures the request has the correct system secret.
// An empty secret disables the guarded routes entirely.
func RequireInternalAuth(systemSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if systemSecret == "" {
				writeError(w, http.StatusServiceUnavailable, "System secret not configured")
				return
			}
			if r.Header.Get("Authorization") == "" {
				writeError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(systemSecret)) != 1 {
				writeError(w, http.StatusUnauthorized, "Invalid authorization token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
