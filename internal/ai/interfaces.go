package ai

import (
	"context"

	"google.golang.org/genai"
)

// CompletionProvider is the interface for model backends. Operations
// above this layer (classification, signal fetching, synthesis) build
// their own prompts and parse their own payloads; the provider only
// runs the completion and reports token usage.
type CompletionProvider interface {
	Complete(ctx context.Context, operation, systemPrompt, userPrompt string, opts CompletionOptions) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// CompletionOptions tunes a single completion call. Zero values fall
// back to the provider's operation configuration.
type CompletionOptions struct {
	Temperature *float32
	MaxTokens   int32

	// JSONResponse requests application/json output without a schema.
	JSONResponse bool

	// ResponseSchema constrains structured output. Implies JSON.
	ResponseSchema *genai.Schema
}

// TokenUsage represents token usage information from model responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Add accumulates usage from another response. Nil-safe on the argument.
func (t *TokenUsage) Add(other *TokenUsage) {
	if other == nil {
		return
	}
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.TotalTokens += other.TotalTokens
}

// ModelInfo represents information about the model backing a provider
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
