// OpenAI-compatible HTTP adapter.
//
// Endpoints used:
//   - GET  {apiURL}/models           — availability probe (Bearer token)
//   - POST {apiURL}/chat/completions — generate
//   - POST {apiURL}/embeddings       — embed
//
// The API has no native rerank endpoint, so Rerank is synthesized from one
// embeddings call plus cosine similarity. Unlike LocalProvider, the
// synthesized ordering makes no stability guarantee for equal scores.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4096

	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
)

// OpenAIConfig carries the connection settings for an OpenAI-compatible API.
type OpenAIConfig struct {
	APIURL     string // e.g. "https://api.openai.com/v1"
	APIKey     string
	Model      string // chat model, e.g. "gpt-4o"
	EmbedModel string // embedding model, e.g. "text-embedding-3-small"
}

// OpenAIProvider implements Provider against an OpenAI-compatible REST API.
type OpenAIProvider struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider with a 30s request timeout.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &OpenAIProvider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *OpenAIProvider) ID() string   { return "openai" }
func (p *OpenAIProvider) Name() string { return "OpenAI-compatible" }

// Available probes GET /models and reports boolean success. A missing API
// key short-circuits to false without a network call; transport errors and
// non-2xx responses are swallowed into false, never surfaced.
func (p *OpenAIProvider) Available(ctx context.Context) bool {
	if p.cfg.APIKey == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.APIURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ─── wire types ──────────────────────────────────────────────────────────────

type oaChatRequest struct {
	Model          string          `json:"model"`
	Messages       []oaMessage     `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	Tools          []oaTool        `json:"tools,omitempty"`
	ToolChoice     *ToolChoice     `json:"tool_choice,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type oaMessage struct {
	Role       string       `json:"role"`
	Content    any          `json:"content"`
	Name       string       `json:"name,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
}

type oaTool struct {
	Type     string     `json:"type"`
	Function oaFunction `json:"function"`
}

type oaFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type oaToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type oaChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string       `json:"role"`
			Content   string       `json:"content"`
			ToolCalls []oaToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type oaEmbedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type oaEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// Generate maps the request 1:1 onto POST /chat/completions, applying the
// default temperature and max_tokens only when the caller omitted them.
func (p *OpenAIProvider) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResponse, error) {
	req := oaChatRequest{
		Model:          p.cfg.Model,
		Messages:       toWireMessages(opts.Messages),
		Temperature:    defaultTemperature,
		MaxTokens:      defaultMaxTokens,
		ToolChoice:     opts.ToolChoice,
		ResponseFormat: opts.ResponseFormat,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	for _, t := range opts.Tools {
		req.Tools = append(req.Tools, oaTool{
			Type:     "function",
			Function: oaFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	body, err := p.postJSON(ctx, "/chat/completions", req)
	if err != nil {
		return nil, err
	}

	var wire oaChatResponse
	if decodeErr := json.Unmarshal(body, &wire); decodeErr != nil {
		return nil, fmt.Errorf("openai generate: decode response: %w", decodeErr)
	}

	resp := &GenerateResponse{
		ID:      wire.ID,
		Model:   wire.Model,
		Choices: make([]Choice, len(wire.Choices)),
		Usage:   wire.Usage,
	}
	for i, c := range wire.Choices {
		msg := Message{Role: Role(c.Message.Role), Content: c.Message.Content}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		resp.Choices[i] = Choice{
			Index:        c.Index,
			Message:      msg,
			FinishReason: FinishReason(c.FinishReason),
		}
	}
	return resp, nil
}

// Embed maps the request onto POST /embeddings and reshapes the data array
// into one vector per input, in input order.
func (p *OpenAIProvider) Embed(ctx context.Context, opts EmbedOptions) (*EmbedResponse, error) {
	if len(opts.Input) == 0 {
		return &EmbedResponse{Embeddings: [][]float64{}}, nil
	}

	body, err := p.postJSON(ctx, "/embeddings", oaEmbedRequest{
		Model:      p.cfg.EmbedModel,
		Input:      opts.Input,
		Dimensions: opts.Dimensions,
	})
	if err != nil {
		return nil, err
	}

	var wire oaEmbedResponse
	if decodeErr := json.Unmarshal(body, &wire); decodeErr != nil {
		return nil, fmt.Errorf("openai embed: decode response: %w", decodeErr)
	}

	embeddings := make([][]float64, len(opts.Input))
	for _, d := range wire.Data {
		if d.Index >= 0 && d.Index < len(embeddings) {
			embeddings[d.Index] = d.Embedding
		}
	}
	return &EmbedResponse{
		Embeddings: embeddings,
		Usage:      Usage{PromptTokens: wire.Usage.PromptTokens, TotalTokens: wire.Usage.TotalTokens},
	}, nil
}

// Rerank embeds the query and all documents in a single call and scores
// each document by cosine similarity to the query vector. Equal-score
// ordering is not guaranteed stable.
func (p *OpenAIProvider) Rerank(ctx context.Context, opts RerankOptions) (*RerankResponse, error) {
	input := make([]string, 0, len(opts.Documents)+1)
	input = append(input, opts.Query)
	input = append(input, opts.Documents...)

	resp, err := p.Embed(ctx, EmbedOptions{Input: input})
	if err != nil {
		return nil, fmt.Errorf("openai rerank: %w", err)
	}
	if len(resp.Embeddings) != len(input) {
		return nil, fmt.Errorf("openai rerank: expected %d embeddings, got %d", len(input), len(resp.Embeddings))
	}

	queryVec := resp.Embeddings[0]
	results := make([]RerankResult, len(opts.Documents))
	for i, doc := range opts.Documents {
		results[i] = RerankResult{
			Index:    i,
			Score:    cosineSimilarity(queryVec, resp.Embeddings[i+1]),
			Document: doc,
		}
	}

	sort.Slice(results, func(i, j int) bool {
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

// ─── helpers ─────────────────────────────────────────────────────────────────

// postJSON sends an authenticated POST and returns the response body.
// A non-2xx status is returned as *UpstreamError carrying the body text;
// it is never retried or downgraded here.
func (p *OpenAIProvider) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai post %s: encode request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai post %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai post %s: read response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Provider:   p.ID(),
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	return respBody, nil
}

// toWireMessages converts contract messages to the OpenAI wire shape:
// plain string content, or an array of typed parts for multipart messages.
func toWireMessages(msgs []Message) []oaMessage {
	wire := make([]oaMessage, len(msgs))
	for i, m := range msgs {
		om := oaMessage{
			Role:       string(m.Role),
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		if len(m.Parts) == 0 {
			om.Content = m.Content
		} else {
			om.Content = toWireParts(m.Parts)
		}
		for _, tc := range m.ToolCalls {
			wtc := oaToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = tc.Arguments
			om.ToolCalls = append(om.ToolCalls, wtc)
		}
		wire[i] = om
	}
	return wire
}

func toWireParts(parts []ContentPart) []map[string]any {
	wire := make([]map[string]any, len(parts))
	for i, part := range parts {
		switch part.Type {
		case PartText:
			wire[i] = map[string]any{"type": "text", "text": part.Text}
		case PartImageURL:
			wire[i] = map[string]any{"type": "image_url", "image_url": map[string]string{"url": part.URL}}
		case PartFileURL:
			wire[i] = map[string]any{"type": "file_url", "file_url": map[string]string{"url": part.URL}}
		}
	}
	return wire
}

// cosineSimilarity computes (a·b)/(‖a‖‖b‖) between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
