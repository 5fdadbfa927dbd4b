// HTTP handler for the credential exchange (public endpoint — no
// AuthMiddleware). Translates HTTP requests into domain/auth calls and maps
// domain errors to HTTP codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/econpulse/econpulse/internal/domain/auth"
)

// AuthHandler handles the token endpoint.
type AuthHandler struct {
	authService domainauth.Service
}

// NewAuthHandler creates an AuthHandler backed by the provided Service.
func NewAuthHandler(authService domainauth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse is returned after a successful credential exchange.
type TokenResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

// Token handles POST /auth/token.
//
// Response codes:
//   - 200 OK: credentials valid, JWT issued
//   - 400 Bad Request: invalid JSON or missing fields
//   - 401 Unauthorized: unknown client or wrong secret (indistinguishable)
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		writeError(w, http.StatusBadRequest, "client_id and client_secret are required")
		return
	}

	result, err := h.authService.IssueToken(r.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: result.Token, ClientID: result.ClientID})
}
