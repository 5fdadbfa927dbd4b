package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/econpulse/econpulse/internal/infra/ai"
)

// GenerateInput is the input schema for the generate tool.
type GenerateInput struct {
	Prompt      string   `json:"prompt" jsonschema:"the user prompt to answer"`
	System      string   `json:"system,omitempty" jsonschema:"optional system instruction"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature, provider default when omitted"`
	MaxTokens   *int     `json:"max_tokens,omitempty" jsonschema:"completion length cap, provider default when omitted"`
}

// GenerateOutput is the output schema for the generate tool.
type GenerateOutput struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
}

// EmbedInput is the input schema for the embed tool.
type EmbedInput struct {
	Input      []string `json:"input" jsonschema:"texts to embed, one vector per entry"`
	Dimensions int      `json:"dimensions,omitempty" jsonschema:"vector size, provider default when omitted"`
}

// EmbedOutput is the output schema for the embed tool.
type EmbedOutput struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// RerankInput is the input schema for the rerank tool.
type RerankInput struct {
	Query     string   `json:"query" jsonschema:"the query to score documents against"`
	Documents []string `json:"documents" jsonschema:"candidate documents"`
	TopK      int      `json:"top_k,omitempty" jsonschema:"maximum results to return (default 10)"`
}

// RerankOutput is the output schema for the rerank tool.
type RerankOutput struct {
	Results []RerankResultOutput `json:"results"`
}

// RerankResultOutput is a single scored document.
type RerankResultOutput struct {
	Index    int     `json:"index"`
	Score    float64 `json:"score"`
	Document string  `json:"document"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate",
		Description: "Generate a chat completion from the active AI provider",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "embed",
		Description: "Compute embedding vectors for a batch of texts",
	}, s.handleEmbed)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rerank",
		Description: "Score and order documents by relevance to a query",
	}, s.handleRerank)
}

// handleGenerate handles the generate tool invocation.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	var messages []ai.Message
	if input.System != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: input.System})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: input.Prompt})

	resp, err := s.svc.Generate(ctx, ai.GenerateOptions{
		Messages:    messages,
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
	})
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	output := GenerateOutput{Model: resp.Model}
	if len(resp.Choices) > 0 {
		output.Content = resp.Choices[0].Message.Content
		output.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return nil, output, nil
}

// handleEmbed handles the embed tool invocation.
func (s *Server) handleEmbed(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EmbedInput,
) (*mcp.CallToolResult, EmbedOutput, error) {
	resp, err := s.svc.Embed(ctx, ai.EmbedOptions{
		Input:      input.Input,
		Dimensions: input.Dimensions,
	})
	if err != nil {
		return nil, EmbedOutput{}, err
	}
	return nil, EmbedOutput{Embeddings: resp.Embeddings}, nil
}

// handleRerank handles the rerank tool invocation.
func (s *Server) handleRerank(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RerankInput,
) (*mcp.CallToolResult, RerankOutput, error) {
	resp, err := s.svc.Rerank(ctx, ai.RerankOptions{
		Query:     input.Query,
		Documents: input.Documents,
		TopK:      input.TopK,
	})
	if err != nil {
		return nil, RerankOutput{}, err
	}

	output := RerankOutput{Results: make([]RerankResultOutput, len(resp.Results))}
	for i, r := range resp.Results {
		output.Results[i] = RerankResultOutput{
			Index:    r.Index,
			Score:    r.Score,
			Document: r.Document,
		}
	}
	return nil, output, nil
}
