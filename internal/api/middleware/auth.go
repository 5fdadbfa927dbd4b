// Package middleware holds the HTTP middleware for the API surface.
// AuthMiddleware reads Authorization: Bearer <token>, validates it, and
// injects the client id into the request context.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/econpulse/econpulse/internal/api/ctxkeys"
	pkgauth "github.com/econpulse/econpulse/pkg/auth"
)

// AuthMiddleware validates the Bearer JWT and injects claims into context.
// Used on all /api/v1/* routes; /auth/token and /health stay public.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)
		if tokenString == "" {
			writeUnauthorized(w, "missing or invalid Authorization header")
			return
		}

		claims, err := pkgauth.ParseJWT(tokenString)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := ctxkeys.WithValue(r.Context(), ctxkeys.ClientID, claims.ClientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if the header is missing, uses a different scheme, or
// carries an empty token.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeUnauthorized writes a 401 JSON response in the same shape as
// writeError in the handlers package.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
