// Provider is the uniform contract over heterogeneous AI backends.
// Every adapter must implement all three capabilities in full or return an
// explicit error; partial best-effort responses are not permitted.
package ai

import "context"

// BaselineProviderID is the id of the deterministic offline provider. The
// registry guarantees an adapter with this id is always registered.
const BaselineProviderID = "local"

// Provider is implemented by every AI backend adapter.
type Provider interface {
	// ID returns the stable registry key for this adapter, e.g. "local".
	ID() string

	// Name returns a human-readable provider name for diagnostics.
	Name() string

	// Available reports whether the backend can currently serve calls.
	// It never returns an error: configuration and transport failures are
	// absorbed into a false verdict.
	Available(ctx context.Context) bool

	// Generate performs a chat completion.
	Generate(ctx context.Context, opts GenerateOptions) (*GenerateResponse, error)

	// Embed computes one vector per input string, in input order.
	Embed(ctx context.Context, opts EmbedOptions) (*EmbedResponse, error)

	// Rerank scores documents against a query and returns the top results
	// ordered by descending score.
	Rerank(ctx context.Context, opts RerankOptions) (*RerankResponse, error)
}
