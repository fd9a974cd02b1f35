package config

import "time"

// ResolvedAIConfig is the effective completion configuration for a
// single operation after operation-specific values are merged over the
// global fallbacks.
type ResolvedAIConfig struct {
	Provider       string
	Model          string
	Timeout        time.Duration
	APIKey         string
	Temperature    float32
	MaxTokens      int32
	CircuitBreaker CircuitBreakerConfig
}

// ForOperation resolves the effective configuration for the named
// operation ("classify", "signals", "synthesize"). Unknown operations
// resolve to the global configuration.
func (a *AIConfig) ForOperation(operation string) ResolvedAIConfig {
	var op OperationAIConfig
	switch operation {
	case "classify":
		op = a.Classify
	case "signals":
		op = a.Signals
	case "synthesize":
		op = a.Synthesize
	}
	return a.resolve(op)
}

func (a *AIConfig) resolve(op OperationAIConfig) ResolvedAIConfig {
	resolved := ResolvedAIConfig{
		Provider:       a.Provider,
		Model:          a.Model,
		Timeout:        a.Timeout,
		APIKey:         a.APIKey,
		Temperature:    a.Temperature,
		MaxTokens:      a.MaxTokens,
		CircuitBreaker: op.CircuitBreaker,
	}

	if op.Provider != "" {
		resolved.Provider = op.Provider
	}
	if op.Model != "" {
		resolved.Model = op.Model
	}
	if op.Timeout != nil && *op.Timeout > 0 {
		resolved.Timeout = *op.Timeout
	}
	if op.APIKey != "" {
		resolved.APIKey = op.APIKey
	}
	if op.Temperature != nil {
		resolved.Temperature = *op.Temperature
	}
	if op.MaxTokens != nil && *op.MaxTokens > 0 {
		resolved.MaxTokens = *op.MaxTokens
	}

	return resolved
}
