// Package ai defines the provider abstraction shared by every AI backend.
// All types here are part of the capability contract: adapters (local,
// OpenAI-compatible) and callers (API handlers, MCP tools) speak only in
// these shapes, never in provider wire formats.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentPartType tags the variant of a ContentPart.
type ContentPartType string

const (
	PartText     ContentPartType = "text"
	PartImageURL ContentPartType = "image_url"
	PartFileURL  ContentPartType = "file_url"
)

// ContentPart is one element of a multimodal message body.
// Exactly one payload field is meaningful for a given Type.
type ContentPart struct {
	Type ContentPartType `json:"type"`
	Text string          `json:"text,omitempty"`
	URL  string          `json:"url,omitempty"`
}

// ToolCall is a function invocation requested by the model.
// Arguments is the raw JSON argument object, passed through verbatim.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a single turn in a conversation. Content carries plain text;
// when Parts is non-empty it takes precedence and Content is ignored.
// Messages are value types: adapters never mutate them.
type Message struct {
	Role       Role          `json:"role"`
	Content    string        `json:"content"`
	Parts      []ContentPart `json:"parts,omitempty"`
	Name       string        `json:"name,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`
}

// Text flattens the message body to plain text. For multipart messages the
// text parts are joined with newlines; image and file parts are skipped.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p.Type == PartText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// Tool is a function-call descriptor forwarded to providers unmodified.
// Parameters is a JSON-schema-shaped map and is treated as opaque.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolChoiceMode tags the variant of a ToolChoice.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceFunction ToolChoiceMode = "function"
)

// ToolChoice is a tagged union replacing the loose string-or-object shape
// of the OpenAI wire format. Function is only meaningful when Mode is
// ToolChoiceFunction.
type ToolChoice struct {
	Mode     ToolChoiceMode
	Function string
}

// MarshalJSON renders the OpenAI wire shape: bare strings for the simple
// modes, an object for a forced function call.
func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	switch tc.Mode {
	case ToolChoiceAuto, ToolChoiceNone, ToolChoiceRequired:
		return json.Marshal(string(tc.Mode))
	case ToolChoiceFunction:
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]string{"name": tc.Function},
		})
	default:
		return nil, fmt.Errorf("ai: unknown tool choice mode %q", tc.Mode)
	}
}

// ResponseFormatType tags the variant of a ResponseFormat.
type ResponseFormatType string

const (
	FormatText       ResponseFormatType = "text"
	FormatJSONObject ResponseFormatType = "json_object"
	FormatJSONSchema ResponseFormatType = "json_schema"
)

// ResponseFormat constrains the shape of generated output. Schema is only
// meaningful when Type is FormatJSONSchema.
type ResponseFormat struct {
	Type   ResponseFormatType
	Schema map[string]any
}

// MarshalJSON renders the OpenAI wire shape.
func (rf ResponseFormat) MarshalJSON() ([]byte, error) {
	switch rf.Type {
	case FormatText, FormatJSONObject:
		return json.Marshal(map[string]any{"type": string(rf.Type)})
	case FormatJSONSchema:
		return json.Marshal(map[string]any{
			"type":        string(rf.Type),
			"json_schema": rf.Schema,
		})
	default:
		return nil, fmt.Errorf("ai: unknown response format %q", rf.Type)
	}
}

// FinishReason explains why a choice stopped generating.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
)

// Usage holds token counters for a completed call. The local provider
// reports character counts here instead of true token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateOptions is the input for a chat completion. Temperature and
// MaxTokens are pointers so adapters can tell "omitted" from "zero" and
// apply their own defaults.
type GenerateOptions struct {
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Tools          []Tool          `json:"tools,omitempty"`
	ToolChoice     *ToolChoice     `json:"tool_choice,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Choice is one ranked completion within a GenerateResponse.
type Choice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
}

// GenerateResponse is the output of a chat completion.
type GenerateResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// EmbedOptions is the input for a batch embedding call.
// Dimensions of 0 means the provider default.
type EmbedOptions struct {
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbedResponse is the output of a batch embedding call.
// Embeddings[i] corresponds to Input[i] in the request.
type EmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Usage      Usage       `json:"usage"`
}

// RerankOptions is the input for a rerank call. Documents are referenced by
// their position in this slice; TopK of 0 means DefaultTopK.
type RerankOptions struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopK      int      `json:"top_k,omitempty"`
}

// DefaultTopK bounds rerank results when the caller does not set TopK.
const DefaultTopK = 10

// RerankResult is one scored document. Index is the document's position in
// the request, so callers can recover order-significant inputs.
type RerankResult struct {
	Index    int     `json:"index"`
	Score    float64 `json:"score"`
	Document string  `json:"document"`
}

// RerankResponse is the output of a rerank call, ordered by descending score.
type RerankResponse struct {
	Results []RerankResult `json:"results"`
}
