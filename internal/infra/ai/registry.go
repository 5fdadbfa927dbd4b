// Provider registry and failover resolver.
//
// The registry is an explicit constructed object, not a package singleton:
// callers build one at startup and pass it down. It holds a typed reference
// to the baseline deterministic provider, so fallback never depends on a
// string lookup that something could unregister.
package ai

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/econpulse/econpulse/internal/infra/eventbus"
)

// TopicFallback is the event bus topic published when WithFallback bypasses
// an unavailable provider.
const TopicFallback = "ai.fallback"

// FallbackEvent is the TopicFallback payload.
type FallbackEvent struct {
	BypassedID string
	BaselineID string
	At         time.Time
}

// RegistryOptions configures optional registry behavior.
type RegistryOptions struct {
	// ActiveID selects the initially active provider. Empty means the
	// baseline. An id that never gets registered is tolerated: Active()
	// falls back to the baseline until SetActive changes it.
	ActiveID string

	// ProbeTTL caches availability verdicts for this long. Zero preserves
	// the reference behavior of probing on every call, so a recovered
	// provider becomes eligible again immediately.
	ProbeTTL time.Duration

	// Bus, when non-nil, receives a FallbackEvent for every bypassed call.
	Bus eventbus.EventBus
}

// probeVerdict is one cached availability result.
type probeVerdict struct {
	ok bool
	at time.Time
}

// Registry tracks registered providers and the active selection.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	baseline  Provider
	activeID  string
	probes    map[string]probeVerdict

	probeTTL time.Duration
	bus      eventbus.EventBus
}

// NewRegistry creates a registry with the given baseline provider already
// registered. The baseline must be always-available; in practice it is the
// LocalProvider.
func NewRegistry(baseline Provider, opts RegistryOptions) *Registry {
	activeID := opts.ActiveID
	if activeID == "" {
		activeID = baseline.ID()
	}
	r := &Registry{
		providers: map[string]Provider{baseline.ID(): baseline},
		baseline:  baseline,
		activeID:  activeID,
		probes:    make(map[string]probeVerdict),
		probeTTL:  opts.ProbeTTL,
		bus:       opts.Bus,
	}
	return r
}

// Register stores an adapter under its id. A second registration with the
// same id silently replaces the first.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	r.providers[p.ID()] = p
	r.mu.Unlock()
}

// Active returns the adapter for the current active id. It never returns
// nil: an active id that does not resolve yields the baseline provider.
func (r *Registry) Active() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[r.activeID]; ok {
		return p
	}
	return r.baseline
}

// ActiveID returns the configured active provider id. The id may not
// resolve to a registered provider; see Active.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// SetActive switches the active provider. An unregistered id returns
// *UnknownProviderError and leaves the current selection untouched.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[id]; !ok {
		return &UnknownProviderError{ID: id}
	}
	r.activeID = id
	return nil
}

// List returns the registered provider ids. Order is not significant.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

// Lookup returns the provider registered under the given id.
func (r *Registry) Lookup(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// ProviderAvailable reports the availability of one provider by id.
// Unregistered ids are false.
func (r *Registry) ProviderAvailable(ctx context.Context, id string) bool {
	p, ok := r.Lookup(id)
	if !ok {
		return false
	}
	return r.available(ctx, p)
}

// WithFallback resolves the provider for one call: the active provider if
// its availability probe passes, otherwise the baseline. The substitution
// is call-scoped — the active selection is never changed by a failed probe,
// so the next call re-evaluates from the configured provider.
func (r *Registry) WithFallback(ctx context.Context) Provider {
	active := r.Active()
	if r.available(ctx, active) {
		return active
	}

	log.Printf("ai: provider %q unavailable, serving from %q", active.ID(), r.baseline.ID())
	if r.bus != nil {
		r.bus.Publish(TopicFallback, FallbackEvent{
			BypassedID: active.ID(),
			BaselineID: r.baseline.ID(),
			At:         time.Now(),
		})
	}
	return r.baseline
}

// available probes a provider, consulting the verdict cache when ProbeTTL
// is configured.
func (r *Registry) available(ctx context.Context, p Provider) bool {
	if r.probeTTL <= 0 {
		return p.Available(ctx)
	}

	r.mu.RLock()
	v, ok := r.probes[p.ID()]
	r.mu.RUnlock()
	if ok && time.Since(v.at) < r.probeTTL {
		return v.ok
	}

	verdict := p.Available(ctx)
	r.mu.Lock()
	r.probes[p.ID()] = probeVerdict{ok: verdict, at: time.Now()}
	r.mu.Unlock()
	return verdict
}
