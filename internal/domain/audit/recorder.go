package audit

import (
	"context"
	"log"

	"github.com/econpulse/econpulse/internal/infra/ai"
	"github.com/econpulse/econpulse/internal/infra/eventbus"
)

// Recorder drains AI call events from the bus into the audit store.
type Recorder struct {
	svc *Service
	bus eventbus.EventBus
}

// NewRecorder creates a recorder writing through svc.
func NewRecorder(svc *Service, bus eventbus.EventBus) *Recorder {
	return &Recorder{svc: svc, bus: bus}
}

// Start subscribes to the call topic and consumes events until ctx is
// cancelled. It returns immediately; consumption happens in a goroutine.
// A failed insert is logged and skipped — the audit trail is best-effort
// and must never push back on the serving path.
func (r *Recorder) Start(ctx context.Context) {
	events := r.bus.Subscribe(ai.TopicCall)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-events:
				call, ok := evt.Payload.(ai.CallEvent)
				if !ok {
					continue
				}
				if err := r.svc.Log(ctx, recordFromEvent(call)); err != nil {
					log.Printf("audit: record call event: %v", err)
				}
			}
		}
	}()
}

// recordFromEvent maps a bus payload onto a persistable record.
func recordFromEvent(call ai.CallEvent) *CallRecord {
	rec := &CallRecord{
		Operation:  call.Operation,
		ProviderID: call.ProviderID,
		Fallback:   call.Fallback,
		DurationMS: call.Duration.Milliseconds(),
		Outcome:    OutcomeSuccess,
		CreatedAt:  call.At,
	}
	if call.Err != "" {
		rec.Outcome = OutcomeError
		errText := call.Err
		rec.Error = &errText
	}
	return rec
}
