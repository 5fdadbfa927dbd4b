// HTTP handlers for provider administration: listing, availability probing
// and switching the active provider.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/econpulse/econpulse/internal/infra/ai"
)

// ProvidersHandler exposes the registry over HTTP.
type ProvidersHandler struct {
	reg *ai.Registry
}

// NewProvidersHandler creates a ProvidersHandler.
func NewProvidersHandler(reg *ai.Registry) *ProvidersHandler {
	return &ProvidersHandler{reg: reg}
}

// providerInfo is one entry in the list response.
type providerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Available bool   `json:"available"`
}

// List handles GET /api/v1/providers.
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activeID := h.reg.ActiveID()

	ids := h.reg.List()
	sort.Strings(ids)

	infos := make([]providerInfo, 0, len(ids))
	for _, id := range ids {
		p, ok := h.reg.Lookup(id)
		if !ok {
			continue
		}
		infos = append(infos, providerInfo{
			ID:        id,
			Name:      p.Name(),
			Active:    id == activeID,
			Available: h.reg.ProviderAvailable(ctx, id),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"providers": infos,
		"active":    activeID,
	})
}

// Availability handles GET /api/v1/providers/{id}/availability.
func (h *ProvidersHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.reg.Lookup(id); !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"available": h.reg.ProviderAvailable(r.Context(), id),
	})
}

// activateRequest is the body for POST /api/v1/providers/activate.
type activateRequest struct {
	ID string `json:"id"`
}

// Activate handles POST /api/v1/providers/activate. Switching to an
// unregistered provider is rejected and leaves the selection untouched.
func (h *ProvidersHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.reg.SetActive(req.ID); err != nil {
		var unknownErr *ai.UnknownProviderError
		if errors.As(err, &unknownErr) {
			writeError(w, http.StatusNotFound, "unknown provider")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to activate provider")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"active": req.ID})
}
