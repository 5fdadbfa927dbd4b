// HTTP handlers for the AI capability endpoints.
// POST /api/v1/ai/generate | /api/v1/ai/embed | /api/v1/ai/rerank — each
// resolves a provider through the failover path.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/econpulse/econpulse/internal/infra/ai"
)

// AIHandler exposes the generate/embed/rerank operations over HTTP.
type AIHandler struct {
	svc *ai.Service
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(svc *ai.Service) *AIHandler {
	return &AIHandler{svc: svc}
}

// generateResponse wraps the completion with the provider that served it.
type generateResponse struct {
	Provider string               `json:"provider"`
	Result   *ai.GenerateResponse `json:"result"`
}

// Generate handles POST /api/v1/ai/generate.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var opts ai.GenerateOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(opts.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	resp, err := h.svc.Generate(r.Context(), opts)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Provider: h.servedBy(resp.Model),
		Result:   resp,
	})
}

type embedResponse struct {
	Result *ai.EmbedResponse `json:"result"`
}

// Embed handles POST /api/v1/ai/embed.
func (h *AIHandler) Embed(w http.ResponseWriter, r *http.Request) {
	var opts ai.EmbedOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(opts.Input) == 0 {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	resp, err := h.svc.Embed(r.Context(), opts)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, embedResponse{Result: resp})
}

type rerankResponse struct {
	Result *ai.RerankResponse `json:"result"`
}

// Rerank handles POST /api/v1/ai/rerank.
func (h *AIHandler) Rerank(w http.ResponseWriter, r *http.Request) {
	var opts ai.RerankOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if opts.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(opts.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents are required")
		return
	}

	resp, err := h.svc.Rerank(r.Context(), opts)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rerankResponse{Result: resp})
}

// servedBy maps a response model onto a provider id for the response
// envelope. The deterministic model string is the local provider's marker.
func (h *AIHandler) servedBy(model string) string {
	if model == "deterministic" {
		return ai.BaselineProviderID
	}
	return h.svc.Registry().ActiveID()
}

// writeAIError maps provider failures to HTTP statuses. An admitted call
// that failed upstream surfaces as 502 with the upstream details; anything
// else is a plain 500.
func writeAIError(w http.ResponseWriter, err error) {
	var upErr *ai.UpstreamError
	if errors.As(err, &upErr) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":           "upstream provider error",
			"provider":        upErr.Provider,
			"upstream_status": upErr.StatusCode,
			"upstream_body":   upErr.Body,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "ai call failed")
}
