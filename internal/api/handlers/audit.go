// HTTP handler for the AI call audit trail.
// GET /api/v1/audit/calls — recent call records, newest first.
package handlers

import (
	"net/http"

	"github.com/econpulse/econpulse/internal/domain/audit"
)

// AuditHandler exposes the persisted call trail.
type AuditHandler struct {
	svc *audit.Service
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc *audit.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// listCallsResponse is the body for GET /api/v1/audit/calls.
type listCallsResponse struct {
	Calls  []*audit.CallRecord `json:"calls"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// ListCalls handles GET /api/v1/audit/calls with limit/offset pagination.
func (h *AuditHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	page := parsePaginationParams(r)

	records, total, err := h.svc.ListRecent(r.Context(), page.Limit, page.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list call records")
		return
	}
	if records == nil {
		records = []*audit.CallRecord{}
	}

	writeJSON(w, http.StatusOK, listCallsResponse{
		Calls:  records,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}
