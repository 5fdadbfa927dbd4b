// Call-through façade over the registry.
//
// Service.Generate/Embed/Rerank are the only entry points the rest of the
// system uses. Each call resolves a provider through the failover path and
// publishes a CallEvent so the audit recorder can persist what actually
// served the request.
package ai

import (
	"context"
	"time"

	"github.com/econpulse/econpulse/internal/infra/eventbus"
)

// TopicCall is the event bus topic published after every façade call.
const TopicCall = "ai.call"

// CallEvent is the TopicCall payload.
type CallEvent struct {
	Operation  string // "generate" | "embed" | "rerank"
	ProviderID string // the provider that served the call
	Fallback   bool   // true when the configured provider was bypassed
	Duration   time.Duration
	Err        string // empty on success
	At         time.Time
}

// Service is the call-through façade external collaborators depend on.
type Service struct {
	reg *Registry
	bus eventbus.EventBus
}

// NewService creates the façade. bus may be nil when call events are not
// wanted (tests, one-shot tools).
func NewService(reg *Registry, bus eventbus.EventBus) *Service {
	return &Service{reg: reg, bus: bus}
}

// Registry exposes the underlying registry for admin surfaces
// (provider listing and activation).
func (s *Service) Registry() *Registry { return s.reg }

// Generate resolves a provider with fallback and performs a chat completion.
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResponse, error) {
	p := s.reg.WithFallback(ctx)
	start := time.Now()
	resp, err := p.Generate(ctx, opts)
	s.publish("generate", p, start, err)
	return resp, err
}

// Embed resolves a provider with fallback and computes embeddings.
func (s *Service) Embed(ctx context.Context, opts EmbedOptions) (*EmbedResponse, error) {
	p := s.reg.WithFallback(ctx)
	start := time.Now()
	resp, err := p.Embed(ctx, opts)
	s.publish("embed", p, start, err)
	return resp, err
}

// Rerank resolves a provider with fallback and scores documents.
func (s *Service) Rerank(ctx context.Context, opts RerankOptions) (*RerankResponse, error) {
	p := s.reg.WithFallback(ctx)
	start := time.Now()
	resp, err := p.Rerank(ctx, opts)
	s.publish("rerank", p, start, err)
	return resp, err
}

func (s *Service) publish(op string, served Provider, start time.Time, err error) {
	if s.bus == nil {
		return
	}
	evt := CallEvent{
		Operation:  op,
		ProviderID: served.ID(),
		Fallback:   served.ID() != s.reg.ActiveID(),
		Duration:   time.Since(start),
		At:         time.Now(),
	}
	if err != nil {
		evt.Err = err.Error()
	}
	s.bus.Publish(TopicCall, evt)
}
