package audit

import "time"

// Outcome represents the result of an audited AI call
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// CallRecord is a single audit entry for one AI operation.
// Records are immutable - once created, they are never modified.
type CallRecord struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	ProviderID string    `json:"provider_id"`
	Fallback   bool      `json:"fallback"`
	DurationMS int64     `json:"duration_ms"`
	Outcome    Outcome   `json:"outcome"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
