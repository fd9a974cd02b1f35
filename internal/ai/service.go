package ai

import (
	"context"
	"fmt"

	"salaryscope/internal/config"
	"salaryscope/internal/errors"
)

// Service wraps a CompletionProvider configured for a specific
// operation type ("classify", "signals", "synthesize")
type Service struct {
	Provider      CompletionProvider // Exported for access from server package
	OperationType string
	config        config.ResolvedAIConfig
	logger        *errors.Logger
}

// NewService creates a completion service for a specific operation
func NewService(cfg config.ResolvedAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing completion service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout)

	var provider CompletionProvider
	var err error

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider:      provider,
		OperationType: operationType,
		config:        cfg,
		logger:        logger,
	}, nil
}

// Complete runs a completion through the underlying provider
func (s *Service) Complete(ctx context.Context, operation, systemPrompt, userPrompt string, opts CompletionOptions) (string, *TokenUsage, error) {
	return s.Provider.Complete(ctx, operation, systemPrompt, userPrompt, opts)
}

// GetModelInfo returns information about the model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources
func (s *Service) Close() error {
	return s.Provider.Close()
}
