package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"salaryscope/internal/config"
	scopeErrors "salaryscope/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements CompletionProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         config.ResolvedAIConfig
	operationType  string
	circuitBreaker *CompletionCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *scopeErrors.Logger
}

// Ensure GeminiProvider implements CompletionProvider
var _ CompletionProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg config.ResolvedAIConfig, operationType string, logger *scopeErrors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, scopeErrors.NewConfigError(scopeErrors.ErrCodeMissingAPIKey,
			"Gemini API key is not configured for "+operationType, nil)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, scopeErrors.NewAIError(scopeErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operationType:  operationType,
		circuitBreaker: NewCompletionCircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// Complete implements CompletionProvider. The call is bounded by the
// operation timeout and protected by the operation's circuit breaker.
// Failures are never retried here: signal sources degrade to low
// confidence instead, and retrying would stretch the fan-out past the
// adapter deadline.
func (g *GeminiProvider) Complete(ctx context.Context, operation, systemPrompt, userPrompt string, opts CompletionOptions) (string, *TokenUsage, error) {
	tracer := otel.Tracer("salaryscope.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	genaiConfig := g.buildGenerateConfig(opts)

	temperature := g.config.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("ai.operation", operation),
		attribute.Float64("ai.temperature", float64(temperature)),
		attribute.Int("input.prompt_length", len(userPrompt)),
	)

	if systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	callCtx := ctx
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, g.classifyError(operation, err)
	}

	text := result.Text()
	if text == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, scopeErrors.NewAIError(scopeErrors.ErrCodeSynthesisEmpty,
			"Model returned an empty response for "+operation, nil)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return text, tokenUsage, nil
}

// buildGenerateConfig translates completion options into a genai request config
func (g *GeminiProvider) buildGenerateConfig(opts CompletionOptions) *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{}

	if opts.ResponseSchema != nil {
		genaiConfig.ResponseMIMEType = "application/json"
		genaiConfig.ResponseSchema = opts.ResponseSchema
	} else if opts.JSONResponse {
		genaiConfig.ResponseMIMEType = "application/json"
	}

	temperature := g.config.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	if temperature > 0 {
		genaiConfig.Temperature = genai.Ptr(temperature)
	}

	maxTokens := g.config.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	if maxTokens > 0 {
		genaiConfig.MaxOutputTokens = maxTokens
	}

	return genaiConfig
}

// classifyError maps transport and API failures onto application error codes.
// Quota and server-side failures surface as UPSTREAM_UNAVAILABLE so callers
// can distinguish a degraded provider from a bad request; deadline and
// network timeouts get their own codes.
func (g *GeminiProvider) classifyError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return scopeErrors.NewAIError(scopeErrors.ErrCodeAITimeout,
			fmt.Sprintf("Completion timed out during %s", operation), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return scopeErrors.NewNetworkError(scopeErrors.ErrCodeNetworkTimeout,
				fmt.Sprintf("Network timeout during %s", operation), err)
		}
		return scopeErrors.NewAIError(scopeErrors.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("Network failure during %s", operation), err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return scopeErrors.NewAIError(scopeErrors.ErrCodeUpstreamUnavailable,
				fmt.Sprintf("Upstream unavailable during %s (HTTP %d)", operation, apiErr.Code), err)
		}
	}

	return scopeErrors.NewAIError(scopeErrors.ErrCodeAIServiceFailed,
		"Failed to generate content for "+operation, err)
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

const modelCheckTimeout = 10 * time.Second

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements CompletionProvider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
