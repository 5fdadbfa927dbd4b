package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/econpulse/econpulse/internal/infra/ai"
)

// ====================================================================
// Helpers
// ====================================================================

func newTestServer(t *testing.T) *Server {
	t.Helper()

	reg := ai.NewRegistry(ai.NewLocalProvider(), ai.RegistryOptions{})
	svc := ai.NewService(reg, nil)

	srv, err := NewServer(svc)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

// ====================================================================
// Constructor
// ====================================================================

func TestNewServer_NilService(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

// ====================================================================
// Generate tool
// ====================================================================

func TestHandleGenerate(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	input := GenerateInput{Prompt: "What is the inflation outlook?"}
	_, output, err := srv.handleGenerate(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleGenerate: %v", err)
	}

	if output.Content == "" {
		t.Fatal("expected non-empty content")
	}
	if !strings.Contains(output.Content, "Inflation") {
		t.Errorf("expected inflation answer, got %q", output.Content)
	}
	if output.FinishReason != string(ai.FinishStop) {
		t.Errorf("finish reason = %q, want %q", output.FinishReason, ai.FinishStop)
	}
}

func TestHandleGenerate_SystemMessage(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	// Classification keys on the last user message, so a system
	// instruction must not change which template is selected.
	input := GenerateInput{
		System: "You are a terse assistant.",
		Prompt: "Tell me about the exchange rate today",
	}
	_, output, err := srv.handleGenerate(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleGenerate: %v", err)
	}
	if !strings.Contains(output.Content, "Exchange rate") {
		t.Errorf("expected exchange rate answer, got %q", output.Content)
	}
}

// ====================================================================
// Embed tool
// ====================================================================

func TestHandleEmbed(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	input := EmbedInput{Input: []string{"peso", "dollar"}, Dimensions: 8}
	_, output, err := srv.handleEmbed(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleEmbed: %v", err)
	}

	if len(output.Embeddings) != 2 {
		t.Fatalf("embeddings = %d, want 2", len(output.Embeddings))
	}
	for i, vec := range output.Embeddings {
		if len(vec) != 8 {
			t.Errorf("embedding %d has %d dims, want 8", i, len(vec))
		}
	}
}

func TestHandleEmbed_Deterministic(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	input := EmbedInput{Input: []string{"monetary policy"}, Dimensions: 16}
	_, first, err := srv.handleEmbed(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleEmbed: %v", err)
	}
	_, second, err := srv.handleEmbed(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleEmbed: %v", err)
	}

	for i := range first.Embeddings[0] {
		if first.Embeddings[0][i] != second.Embeddings[0][i] {
			t.Fatalf("embedding differs at dim %d", i)
		}
	}
}

// ====================================================================
// Rerank tool
// ====================================================================

func TestHandleRerank(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	input := RerankInput{
		Query: "exchange rate dollar",
		Documents: []string{
			"the official exchange rate for the dollar rose",
			"unemployment figures for the quarter",
		},
	}
	_, output, err := srv.handleRerank(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleRerank: %v", err)
	}

	if len(output.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(output.Results))
	}
	if output.Results[0].Index != 0 {
		t.Errorf("top result index = %d, want 0", output.Results[0].Index)
	}
	if output.Results[0].Score <= output.Results[1].Score {
		t.Errorf("scores not descending: %v then %v",
			output.Results[0].Score, output.Results[1].Score)
	}
	if output.Results[0].Document == "" {
		t.Error("expected document text in result")
	}
}

func TestHandleRerank_TopK(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	input := RerankInput{
		Query:     "inflation",
		Documents: []string{"inflation a", "inflation b", "inflation c"},
		TopK:      2,
	}
	_, output, err := srv.handleRerank(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleRerank: %v", err)
	}
	if len(output.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(output.Results))
	}
}
