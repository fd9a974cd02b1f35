package ai

import (
	"log/slog"
	"testing"
	"time"

	"salaryscope/internal/config"
	"salaryscope/internal/errors"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	// Each operation gets its own breaker with its own thresholds

	logger := errors.NewLogger(slog.LevelError)

	classifyConfig := config.ResolvedAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash-lite",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	signalsConfig := config.ResolvedAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash-lite",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.7,
		},
	}

	synthesizeConfig := config.ResolvedAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-pro",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      4,
			Interval:         90 * time.Second,
			Timeout:          75 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.5,
		},
	}

	classifyCB := NewCompletionCircuitBreaker("classify", classifyConfig, logger)
	signalsCB := NewCompletionCircuitBreaker("signals", signalsConfig, logger)
	synthesizeCB := NewCompletionCircuitBreaker("synthesize", synthesizeConfig, logger)

	tests := []struct {
		operation string
		cb        *CompletionCircuitBreaker
	}{
		{"classify", classifyCB},
		{"signals", signalsCB},
		{"synthesize", synthesizeCB},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			stats := tt.cb.GetStats()

			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("Circuit breaker name not found")
			}
			expectedName := "AI-" + tt.operation
			if name != expectedName {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
			}

			state, ok := stats["state"].(string)
			if !ok {
				t.Fatal("Circuit breaker state not found")
			}
			if state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%s'", state)
			}

			enabled, ok := stats["enabled"].(bool)
			if !ok {
				t.Fatal("Circuit breaker enabled status not found")
			}
			if !enabled {
				t.Error("Circuit breaker should be enabled")
			}

			if !tt.cb.IsHealthy() {
				t.Error("Circuit breaker should be healthy initially")
			}
		})
	}

	t.Run("IndependentInstances", func(t *testing.T) {
		if classifyCB == signalsCB || classifyCB == synthesizeCB || signalsCB == synthesizeCB {
			t.Error("Each operation should get its own circuit breaker instance")
		}
	})
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := config.ResolvedAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}

	cb := NewCompletionCircuitBreaker("disabled", disabledConfig, errors.NewLogger(slog.LevelError))
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// Nil breakers execute directly and report healthy
	if !cb.IsHealthy() {
		t.Error("Nil circuit breaker should report healthy")
	}
	stats := cb.GetStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("Nil circuit breaker stats should report disabled")
	}
}

func TestModelCircuitBreaker(t *testing.T) {
	cfg := config.ResolvedAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	cb := NewModelCircuitBreaker("synthesize", cfg, errors.NewLogger(slog.LevelError))
	if cb == nil {
		t.Fatal("Model circuit breaker should not be nil when enabled")
	}

	stats := cb.GetModelStats()
	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}
	if name != "AI-Model-synthesize" {
		t.Errorf("Expected circuit breaker name 'AI-Model-synthesize', got '%s'", name)
	}
	if !cb.IsModelHealthy() {
		t.Error("Model circuit breaker should be healthy initially")
	}
}
