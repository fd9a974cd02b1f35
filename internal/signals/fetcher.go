package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salaryscope/internal/ai"
	"salaryscope/internal/config"
	"salaryscope/internal/errors"
	"salaryscope/internal/types"
)

// Fetcher runs signal-source prompts against the completion service.
// Fetch never returns an error: any failure (provider error, timeout,
// unparseable response) degrades into a low-confidence Signal carrying
// an error marker, so the fan-out join upstream stays unconditional.
type Fetcher struct {
	svc     *ai.Service
	prompts *config.PromptStore
	timeout time.Duration
	logger  *errors.Logger
}

// NewFetcher creates a fetcher. The timeout bounds each individual
// source fetch; zero disables the per-fetch deadline.
func NewFetcher(svc *ai.Service, prompts *config.PromptStore, timeout time.Duration, logger *errors.Logger) *Fetcher {
	return &Fetcher{
		svc:     svc,
		prompts: prompts,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch retrieves one signal. Sources that require a company name
// yield a zero-confidence placeholder when params.Company is empty.
func (f *Fetcher) Fetch(ctx context.Context, source Source, params FetchParams) (types.Signal, *ai.TokenUsage) {
	if source.RequiresCompany && params.Company == "" {
		return PlaceholderSignal(source.ID, "no company name available"), nil
	}

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	userPrompt := fmt.Sprintf(f.promptFor(source),
		params.JobTitle,
		params.Seniority,
		params.Industry,
		params.Location,
		params.Company,
		params.Experience,
		params.WorkMode,
	)

	raw, usage, err := f.svc.Complete(fetchCtx, source.ID, f.systemPromptFor(), userPrompt, ai.CompletionOptions{
		JSONResponse: true,
	})
	if err != nil {
		fetchErr := errors.NewSourceError(errors.ErrCodeSourceFetchFailed,
			"Signal fetch failed for "+source.ID, err)
		f.logger.LogError(fetchErr, "Signal fetch degraded to low-confidence signal",
			"source", source.ID)
		return failedSignal(source.ID, err.Error()), usage
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(ai.CleanModelJSON(raw)), &payload); err != nil {
		f.logger.Warn("Signal payload unparseable, degrading to low-confidence signal",
			"source", source.ID,
			"error", err.Error(),
			"response_length", len(raw))
		return failedSignal(source.ID, "unparseable response: "+err.Error()), usage
	}

	return types.Signal{
		SourceID:   source.ID,
		Confidence: payloadConfidence(payload, source.DefaultConfidence),
		Timestamp:  time.Now(),
		Payload:    payload,
	}, usage
}

func (f *Fetcher) promptFor(source Source) string {
	if f.prompts != nil {
		if override, ok := f.prompts.Lookup(source.ID); ok {
			return override
		}
	}
	return source.userPrompt
}

func (f *Fetcher) systemPromptFor() string {
	if f.prompts != nil {
		if override, ok := f.prompts.Lookup("signals-system"); ok {
			return override
		}
	}
	return SystemPrompt
}

// payloadConfidence prefers the model's own confidence estimate when it
// is usable, otherwise falls back to the source's default.
func payloadConfidence(payload map[string]any, fallback float64) float64 {
	raw, ok := payload["confidence"]
	if !ok {
		return fallback
	}
	value, ok := raw.(float64)
	if !ok || value <= 0 || value > 1 {
		return fallback
	}
	return value
}

// failedSignal converts an adapter failure into the degraded-signal shape
func failedSignal(sourceID, reason string) types.Signal {
	return types.Signal{
		SourceID:   sourceID,
		Confidence: FailedSignalConfidence,
		Timestamp:  time.Now(),
		Payload: map[string]any{
			"error": reason,
		},
	}
}

// PlaceholderSignal marks a source that was skipped rather than failed.
// Zero confidence excludes it from confidence aggregation entirely.
func PlaceholderSignal(sourceID, reason string) types.Signal {
	return types.Signal{
		SourceID:   sourceID,
		Confidence: 0,
		Timestamp:  time.Now(),
		Payload: map[string]any{
			"skipped": reason,
		},
	}
}
