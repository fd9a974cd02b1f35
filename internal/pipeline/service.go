package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"salaryscope/internal/ai"
	"salaryscope/internal/cache"
	"salaryscope/internal/config"
	"salaryscope/internal/errors"
	"salaryscope/internal/observability"
	"salaryscope/internal/signals"
	"salaryscope/internal/types"
)

// Service runs the full analysis pipeline: assemble market context,
// synthesize a draft, validate its numbers, score confidence, and
// memoize the result.
type Service struct {
	assembler   *Assembler
	synthesizer *Synthesizer
	validator   *Validator
	scorer      *Scorer
	cache       *cache.AnalysisCache
	config      *config.Config
	logger      *errors.Logger
	obs         *observability.ObservabilityManager

	classifyService *ai.Service
	signalsService  *ai.Service
	synthService    *ai.Service
}

// NewService wires the pipeline from configuration. Each operation
// gets its own completion service so temperature, timeout, and circuit
// breaker settings stay independent.
func NewService(cfg *config.Config, analysisCache *cache.AnalysisCache, prompts *config.PromptStore, obs *observability.ObservabilityManager, logger *errors.Logger) (*Service, error) {
	classifyService, err := ai.NewService(cfg.AI.ForOperation("classify"), "classify", logger)
	if err != nil {
		return nil, err
	}

	signalsService, err := ai.NewService(cfg.AI.ForOperation("signals"), "signals", logger)
	if err != nil {
		return nil, err
	}

	synthService, err := ai.NewService(cfg.AI.ForOperation("synthesize"), "synthesize", logger)
	if err != nil {
		return nil, err
	}

	var metrics *observability.Metrics
	if obs != nil {
		metrics = obs.GetMetrics()
	}

	classifier := NewClassifier(classifyService, prompts, logger)
	fetcher := signals.NewFetcher(signalsService, prompts, cfg.Pipeline.AdapterTimeout, logger)

	return &Service{
		assembler:       NewAssembler(classifier, fetcher, metrics, logger),
		synthesizer:     NewSynthesizer(synthService, prompts, logger),
		validator:       NewValidator(logger),
		scorer:          NewScorer(),
		cache:           analysisCache,
		config:          cfg,
		logger:          logger,
		obs:             obs,
		classifyService: classifyService,
		signalsService:  signalsService,
		synthService:    synthService,
	}, nil
}

// Analyze produces a compensation analysis for one request, serving
// from cache when a fresh entry exists.
//
// ForceRefresh bypasses the cache read and makes synthesis strict: a
// caller explicitly recomputing wants a real answer or a real error,
// never a sentinel.
func (s *Service) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.AnalyzeResult, error) {
	started := time.Now()

	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"jobDescription is required", nil)
	}
	if req.JobID == "" {
		req.JobID = contentJobID(req.JobDescription)
	}

	key := s.cache.Key(cache.KeyParams{
		JobID:       req.JobID,
		UserID:      req.UserID,
		Location:    requestLocation(req),
		ProfileHash: req.ProfileHash,
		WorkMode:    req.WorkMode,
		Currency:    req.Currency,
	})

	if !req.ForceRefresh {
		if entry, ok := s.cache.Get(key); ok {
			s.recordCacheLookup(ctx, "hit")
			s.logger.Info("Analysis served from cache",
				"job_id", req.JobID,
				"cache_age", time.Since(entry.Timestamp).Round(time.Second).String())
			return &types.AnalyzeResult{
				Analysis:       entry.Data,
				Cached:         true,
				CacheAge:       time.Since(entry.Timestamp).Round(time.Second).String(),
				ProcessingTime: time.Since(started).Round(time.Millisecond).String(),
			}, nil
		}
		s.recordCacheLookup(ctx, "miss")
	}

	ragCtx, usage := s.assembler.Assemble(ctx, req)
	effectiveLocation := EffectiveLocation(req, ragCtx.JobAnalysis.Payload)

	strict := s.config.Pipeline.StrictSynthesis || req.ForceRefresh

	synthStart := time.Now()
	draft, synthUsage, degraded, err := s.synthesizer.Synthesize(ctx, ragCtx, req.JobDescription, effectiveLocation, strict)
	usage.Add(synthUsage)
	s.recordSynthesis(ctx, time.Since(synthStart), err == nil && !degraded)
	if err != nil {
		s.recordAnalysis(ctx, false, "")
		return nil, err
	}

	// The sentinel keeps its zero-confidence block verbatim and is not
	// memoized: the next identical request retries synthesis instead of
	// replaying the failure for a full TTL.
	if degraded {
		s.recordAnalysis(ctx, false, draft.Confidence.EstimateType)
		s.logger.Warn("Analysis degraded to failure sentinel",
			"job_id", req.JobID,
			"total_tokens", usage.TotalTokens,
			"duration_ms", time.Since(started).Milliseconds())
		return &types.AnalyzeResult{
			Analysis:       draft,
			Cached:         false,
			ProcessingTime: time.Since(started).Round(time.Millisecond).String(),
		}, nil
	}

	analysis, corrections := s.validator.Validate(draft)
	if len(corrections) > 0 {
		s.logger.Info("Validator corrected synthesis output",
			"job_id", req.JobID,
			"corrections", strings.Join(corrections, ","))
		s.recordCorrections(ctx, corrections)
	}

	// The scorer owns the confidence block; whatever the model put
	// there is discarded.
	analysis.Confidence = s.scorer.Score(ragCtx)
	analysis.Compensation.SalaryRange.Confidence = analysis.Confidence.Salary

	analysis.Location.JobLocation = req.JobLocation
	analysis.Location.UserLocation = req.UserLocation
	if analysis.Location.EffectiveLocation == "" {
		analysis.Location.EffectiveLocation = effectiveLocation
	}
	analysis.Location.IsRemote = analysis.Location.EffectiveLocation == GlobalRemoteLocation ||
		strings.EqualFold(analysis.Role.WorkMode, "remote")

	s.cache.Set(key, analysis, types.CacheMetadata{
		JobID:    req.JobID,
		UserID:   req.UserID,
		Location: effectiveLocation,
	})

	s.recordAnalysis(ctx, true, analysis.Confidence.EstimateType)
	s.logger.Info("Analysis completed",
		"job_id", req.JobID,
		"effective_location", effectiveLocation,
		"estimate_type", analysis.Confidence.EstimateType,
		"overall_confidence", fmt.Sprintf("%.2f", analysis.Confidence.Overall),
		"corrections", len(corrections),
		"total_tokens", usage.TotalTokens,
		"duration_ms", time.Since(started).Milliseconds())

	return &types.AnalyzeResult{
		Analysis:       analysis,
		Cached:         false,
		ProcessingTime: time.Since(started).Round(time.Millisecond).String(),
	}, nil
}

// Cache exposes the underlying cache for the server's stats and
// invalidation endpoints.
func (s *Service) Cache() *cache.AnalysisCache {
	return s.cache
}

// ModelInfo reports synthesis-model health, used by health checks
func (s *Service) ModelInfo(ctx context.Context) *ai.ModelInfo {
	return s.synthService.GetModelInfo(ctx)
}

// CircuitBreakerStats aggregates breaker state across the three
// operation services.
func (s *Service) CircuitBreakerStats() map[string]any {
	stats := make(map[string]any)
	for name, svc := range map[string]*ai.Service{
		"classify":   s.classifyService,
		"signals":    s.signalsService,
		"synthesize": s.synthService,
	} {
		if provider, ok := svc.Provider.(*ai.GeminiProvider); ok {
			stats[name] = provider.GetCircuitBreakerStats()
		}
	}
	return stats
}

// Close releases the completion services. The cache is owned by the
// caller and closed separately.
func (s *Service) Close() error {
	var firstErr error
	for _, svc := range []*ai.Service{s.classifyService, s.signalsService, s.synthService} {
		if err := svc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Service) recordCacheLookup(ctx context.Context, outcome string) {
	if s.obs != nil {
		s.obs.GetMetrics().RecordCacheLookup(ctx, outcome, s.obs)
	}
}

func (s *Service) recordSynthesis(ctx context.Context, duration time.Duration, success bool) {
	if s.obs != nil {
		s.obs.GetMetrics().RecordSynthesisDuration(ctx, duration, success)
	}
}

func (s *Service) recordCorrections(ctx context.Context, corrections []string) {
	if s.obs != nil {
		s.obs.GetMetrics().RecordValidationCorrections(ctx, corrections)
	}
}

func (s *Service) recordAnalysis(ctx context.Context, success bool, estimateType string) {
	if s.obs != nil {
		s.obs.GetMetrics().RecordAnalysisProduced(ctx, success, estimateType, s.obs)
	}
}

// contentJobID derives a stable job identifier from the posting text
// so identical postings share cache entries without a caller-supplied ID.
func contentJobID(jobDescription string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(jobDescription)))
	return "job-" + hex.EncodeToString(sum[:8])
}

// requestLocation is the location component of the cache key. It uses
// only request fields so the key is computable before any completion
// call runs.
func requestLocation(req types.AnalyzeRequest) string {
	if req.UserLocation != "" {
		return req.UserLocation
	}
	if req.JobLocation != "" {
		return req.JobLocation
	}
	return GlobalRemoteLocation
}
