package ai

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/econpulse/econpulse/internal/infra/eventbus"
)

// ============================================================
// Test doubles
// ============================================================

// stubProvider is a controllable Provider for registry and façade tests.
type stubProvider struct {
	id        string
	available atomic.Bool
	probes    atomic.Int32
	genErr    error
}

func newStub(id string, available bool) *stubProvider {
	s := &stubProvider{id: id}
	s.available.Store(available)
	return s
}

func (s *stubProvider) ID() string   { return s.id }
func (s *stubProvider) Name() string { return "stub " + s.id }

func (s *stubProvider) Available(_ context.Context) bool {
	s.probes.Add(1)
	return s.available.Load()
}

func (s *stubProvider) Generate(_ context.Context, _ GenerateOptions) (*GenerateResponse, error) {
	if s.genErr != nil {
		return nil, s.genErr
	}
	return &GenerateResponse{
		ID:    s.id + "-resp",
		Model: s.id,
		Choices: []Choice{{
			Message:      Message{Role: RoleAssistant, Content: "from " + s.id},
			FinishReason: FinishStop,
		}},
	}, nil
}

func (s *stubProvider) Embed(_ context.Context, opts EmbedOptions) (*EmbedResponse, error) {
	return &EmbedResponse{Embeddings: make([][]float64, len(opts.Input))}, nil
}

func (s *stubProvider) Rerank(_ context.Context, _ RerankOptions) (*RerankResponse, error) {
	return &RerankResponse{}, nil
}

// ============================================================
// Registration and activation
// ============================================================

func TestRegistry_DefaultActiveIsBaseline(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})

	if r.ActiveID() != BaselineProviderID {
		t.Errorf("active id = %q, want %q", r.ActiveID(), BaselineProviderID)
	}
	if r.Active().ID() != BaselineProviderID {
		t.Errorf("active provider = %q, want %q", r.Active().ID(), BaselineProviderID)
	}
}

func TestRegistry_SetActive(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	r.Register(newStub("remote", true))

	if err := r.SetActive("remote"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if r.Active().ID() != "remote" {
		t.Errorf("active provider = %q, want %q", r.Active().ID(), "remote")
	}
}

func TestRegistry_SetActiveUnknownLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})

	err := r.SetActive("ghost")
	var unknownErr *UnknownProviderError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want *UnknownProviderError", err)
	}
	if unknownErr.ID != "ghost" {
		t.Errorf("error id = %q, want %q", unknownErr.ID, "ghost")
	}
	if r.ActiveID() != BaselineProviderID {
		t.Errorf("active id changed to %q after failed SetActive", r.ActiveID())
	}
}

func TestRegistry_UnresolvedActiveIDFallsBackToBaseline(t *testing.T) {
	t.Parallel()

	// Configured provider id that never gets registered, e.g. AI_PROVIDER
	// pointing at an adapter the build does not include.
	r := NewRegistry(NewLocalProvider(), RegistryOptions{ActiveID: "ghost"})

	if r.Active().ID() != BaselineProviderID {
		t.Errorf("active provider = %q, want baseline", r.Active().ID())
	}
}

func TestRegistry_RegisterReplacesByID(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	r.Register(newStub("remote", false))
	replacement := newStub("remote", true)
	r.Register(replacement)

	got, ok := r.Lookup("remote")
	if !ok {
		t.Fatal("Lookup(remote) = false")
	}
	if got != replacement {
		t.Error("Lookup returned the replaced provider")
	}
}

func TestRegistry_List(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	r.Register(newStub("remote", true))

	ids := r.List()
	sort.Strings(ids)
	want := []string{BaselineProviderID, "remote"}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Errorf("List = %v, want %v", ids, want)
	}
}

// ============================================================
// Availability and fallback
// ============================================================

func TestRegistry_WithFallbackServesActiveWhenAvailable(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	remote := newStub("remote", true)
	r.Register(remote)
	if err := r.SetActive("remote"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	if got := r.WithFallback(context.Background()); got.ID() != "remote" {
		t.Errorf("served provider = %q, want %q", got.ID(), "remote")
	}
}

func TestRegistry_WithFallbackBypassesUnavailableProvider(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	events := bus.Subscribe(TopicFallback)

	r := NewRegistry(NewLocalProvider(), RegistryOptions{Bus: bus})
	r.Register(newStub("remote", false))
	if err := r.SetActive("remote"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	if got := r.WithFallback(context.Background()); got.ID() != BaselineProviderID {
		t.Errorf("served provider = %q, want baseline", got.ID())
	}
	// Selection is untouched: the bypass was call-scoped.
	if r.ActiveID() != "remote" {
		t.Errorf("active id = %q, want %q after bypassed call", r.ActiveID(), "remote")
	}

	select {
	case evt := <-events:
		fb, ok := evt.Payload.(FallbackEvent)
		if !ok {
			t.Fatalf("payload type = %T, want FallbackEvent", evt.Payload)
		}
		if fb.BypassedID != "remote" || fb.BaselineID != BaselineProviderID {
			t.Errorf("event = %+v, want bypassed=remote baseline=%s", fb, BaselineProviderID)
		}
	case <-time.After(time.Second):
		t.Fatal("no fallback event published")
	}
}

func TestRegistry_RecoveredProviderServesNextCall(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	remote := newStub("remote", false)
	r.Register(remote)
	if err := r.SetActive("remote"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	if got := r.WithFallback(context.Background()); got.ID() != BaselineProviderID {
		t.Fatalf("served provider = %q, want baseline while down", got.ID())
	}

	remote.available.Store(true)
	if got := r.WithFallback(context.Background()); got.ID() != "remote" {
		t.Errorf("served provider = %q, want %q after recovery", got.ID(), "remote")
	}
}

func TestRegistry_ProbeTTLCachesVerdict(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{ProbeTTL: time.Minute})
	remote := newStub("remote", true)
	r.Register(remote)
	if err := r.SetActive("remote"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	r.WithFallback(context.Background())
	r.WithFallback(context.Background())
	r.WithFallback(context.Background())

	if got := remote.probes.Load(); got != 1 {
		t.Errorf("probe count = %d, want 1 (cached verdict)", got)
	}
}

func TestRegistry_ZeroTTLProbesEveryCall(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	remote := newStub("remote", true)
	r.Register(remote)
	if err := r.SetActive("remote"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	r.WithFallback(context.Background())
	r.WithFallback(context.Background())

	if got := remote.probes.Load(); got != 2 {
		t.Errorf("probe count = %d, want 2 (no cache)", got)
	}
}

func TestRegistry_ProviderAvailable(t *testing.T) {
	t.Parallel()

	r := NewRegistry(NewLocalProvider(), RegistryOptions{})
	r.Register(newStub("remote", false))

	ctx := context.Background()
	if !r.ProviderAvailable(ctx, BaselineProviderID) {
		t.Error("baseline availability = false, want true")
	}
	if r.ProviderAvailable(ctx, "remote") {
		t.Error("down provider availability = true, want false")
	}
	if r.ProviderAvailable(ctx, "ghost") {
		t.Error("unknown provider availability = true, want false")
	}
}
