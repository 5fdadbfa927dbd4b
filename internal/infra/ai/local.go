// Deterministic offline provider.
//
// LocalProvider serves all three capabilities without any network access:
// canned topic templates for generate, hash-seeded normalized vectors for
// embed, and token-overlap scoring for rerank. It is registered both as a
// first-class provider and as the registry's guaranteed fallback target, so
// the calling system always receives a usable response. Every output is a
// pure function of its input; there is no randomness and no external state.
package ai

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/econpulse/econpulse/pkg/uuid"
)

// OfflineMarker prefixes every locally generated completion so downstream
// consumers can flag reduced confidence to the user.
const OfflineMarker = "[deterministic offline mode]"

// DefaultEmbedDimensions is the vector size used when the caller does not
// request a specific dimensionality. Matches text-embedding-3-small.
const DefaultEmbedDimensions = 1536

// localTopic maps a keyword group to a canned response template. Groups are
// matched in order against the last user message; the first hit wins.
type localTopic struct {
	keywords []string
	template string
}

// localTopics is the fixed, ordered classification table for offline
// generation. Keyword matching is case-insensitive substring matching.
var localTopics = []localTopic{
	{
		keywords: []string{"exchange rate", "exchange", "fx", "currency"},
		template: "Exchange rate outlook:\n" +
			"- The local currency has seen sustained depreciation pressure against the US dollar.\n" +
			"- Parallel-market and official rates continue to diverge; the spread is a key stress signal.\n" +
			"- Import costs track the parallel rate closely, passing through to consumer prices.\n" +
			"Consult the FX panel on the dashboard for the latest observed rates.",
	},
	{
		keywords: []string{"inflation", "price", "prices", "cpi"},
		template: "Inflation overview:\n" +
			"- Consumer price inflation remains elevated, driven by food and fuel import costs.\n" +
			"- Currency depreciation is the dominant pass-through channel to headline inflation.\n" +
			"- Staple goods prices are the most volatile component of the basket.\n" +
			"Consult the inflation panel on the dashboard for the latest CPI series.",
	},
	{
		keywords: []string{"gdp", "growth", "output"},
		template: "GDP and growth summary:\n" +
			"- Real output remains well below its pre-crisis trend.\n" +
			"- Recovery is constrained by fiscal pressure, energy costs, and weak investment.\n" +
			"- Service sectors have recovered faster than industry and agriculture.\n" +
			"Consult the growth panel on the dashboard for annual GDP estimates.",
	},
	{
		keywords: []string{"aid", "humanitarian", "assistance", "donor"},
		template: "Humanitarian aid summary:\n" +
			"- Aid flows cover a substantial share of basic consumption needs.\n" +
			"- Funding appeals remain under-subscribed relative to assessed requirements.\n" +
			"- Delivery costs are sensitive to fuel prices and access constraints.\n" +
			"Consult the aid panel on the dashboard for funding and delivery figures.",
	},
}

// localFallbackTemplate answers anything the topic table does not match.
const localFallbackTemplate = "Deterministic mode cannot answer this question.\n" +
	"No live model is available; only canned summaries for exchange rates, inflation,\n" +
	"GDP and humanitarian aid can be produced offline. Configure a remote provider\n" +
	"for open-ended answers."

// LocalProvider implements Provider with no network dependencies.
type LocalProvider struct{}

// NewLocalProvider creates the deterministic offline provider.
func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (p *LocalProvider) ID() string   { return BaselineProviderID }
func (p *LocalProvider) Name() string { return "Deterministic (offline)" }

// Available always reports true: the local provider has nothing to probe.
func (p *LocalProvider) Available(_ context.Context) bool { return true }

// Generate classifies the last user message against the topic table and
// returns the matching canned template, prefixed with OfflineMarker.
//
// Usage counters are the character lengths of the user text and the
// generated text. This is a deliberate approximation of token counts kept
// for behavioral parity with the original dashboard backend; do not replace
// it with real tokenization.
func (p *LocalProvider) Generate(_ context.Context, opts GenerateOptions) (*GenerateResponse, error) {
	userText := lastUserText(opts.Messages)
	content := OfflineMarker + "\n\n" + classifyTopic(userText)

	return &GenerateResponse{
		ID:    "local-" + uuid.NewV7().String(),
		Model: "deterministic",
		Choices: []Choice{{
			Index:        0,
			Message:      Message{Role: RoleAssistant, Content: content},
			FinishReason: FinishStop,
		}},
		Usage: Usage{
			PromptTokens:     len(userText),
			CompletionTokens: len(content),
			TotalTokens:      len(userText) + len(content),
		},
	}, nil
}

// Embed returns one hash-seeded, L2-normalized vector per input string.
// Identical (text, dimensions) pairs always produce bit-identical vectors.
func (p *LocalProvider) Embed(_ context.Context, opts EmbedOptions) (*EmbedResponse, error) {
	dims := opts.Dimensions
	if dims <= 0 {
		dims = DefaultEmbedDimensions
	}

	embeddings := make([][]float64, len(opts.Input))
	chars := 0
	for i, text := range opts.Input {
		embeddings[i] = deterministicVector(text, dims)
		chars += len(text)
	}

	return &EmbedResponse{
		Embeddings: embeddings,
		Usage:      Usage{PromptTokens: chars, TotalTokens: chars},
	}, nil
}

// Rerank scores each document as the fraction of query tokens it contains
// and returns the top results. The sort is stable: documents with equal
// scores retain their original index order.
func (p *LocalProvider) Rerank(_ context.Context, opts RerankOptions) (*RerankResponse, error) {
	queryTokens := strings.Fields(strings.ToLower(opts.Query))

	results := make([]RerankResult, len(opts.Documents))
	for i, doc := range opts.Documents {
		results[i] = RerankResult{
			Index:    i,
			Score:    overlapScore(queryTokens, doc),
			Document: doc,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return &RerankResponse{Results: results}, nil
}

// lastUserText returns the flattened text of the most recent user message,
// or "" when the conversation has none.
func lastUserText(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Text()
		}
	}
	return ""
}

// classifyTopic returns the template of the first topic group whose keyword
// matches text, or the fallback template.
func classifyTopic(text string) string {
	lower := strings.ToLower(text)
	for _, t := range localTopics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.template
			}
		}
	}
	return localFallbackTemplate
}

// seedHash computes the 32-bit rolling hash that seeds a text's vector:
// h = (h<<5 - h) + codepoint over each rune, wrapped to 32 bits, absolute
// value. The exact recurrence is load-bearing: stored vectors from earlier
// dashboard runs must keep matching freshly computed ones.
func seedHash(text string) float64 {
	var h int32
	for _, r := range text {
		h = (h << 5) - h + int32(r)
	}
	// abs through int64 so MinInt32 cannot overflow
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return float64(v)
}

// deterministicVector builds the hash-seeded embedding for text: dims
// components sin(seed*(i+1))*0.5, then L2-normalized. The all-zero vector
// (empty text) is returned as-is rather than dividing by a zero norm.
func deterministicVector(text string, dims int) []float64 {
	seed := seedHash(text)

	vec := make([]float64, dims)
	var sumSquares float64
	for i := range vec {
		vec[i] = math.Sin(seed*float64(i+1)) * 0.5
		sumSquares += vec[i] * vec[i]
	}

	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// overlapScore is the fraction of query tokens present in the document's
// lowercased whitespace tokens. Scores are always in [0, 1].
func overlapScore(queryTokens []string, doc string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	docTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(doc)) {
		docTokens[tok] = struct{}{}
	}

	matched := 0
	for _, tok := range queryTokens {
		if _, ok := docTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
