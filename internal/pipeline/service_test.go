package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"salaryscope/internal/ai"
	"salaryscope/internal/cache"
	"salaryscope/internal/config"
	scopeErrors "salaryscope/internal/errors"
	"salaryscope/internal/signals"
	"salaryscope/internal/types"
)

const classifyResponse = `{
	"title": "Backend Engineer",
	"normalizedTitle": "Backend Engineer",
	"seniorityLevel": "senior",
	"industry": "Technology",
	"skillsRequired": ["Go"],
	"experienceLevel": "5+ years",
	"workMode": "remote",
	"normalizedLocation": "Berlin, Germany",
	"jobType": "full-time",
	"compensationModel": "salary",
	"postedSalary": {"disclosed": false}
}`

const signalResponse = `{"confidence": 0.8, "median": 120000}`

const synthResponse = `{
	"role": {"title": "Backend Engineer", "seniorityLevel": "senior"},
	"compensation": {
		"salaryRange": {"min": 120000, "max": 180000, "median": 150000, "currency": "USD"},
		"totalCompensation": {"base": 150000, "bonus": 10000, "equity": 0, "benefits": 5000, "total": 165000}
	},
	"location": {"effectiveLocation": "Berlin, Germany", "housingCosts": 1800, "taxes": {"federal": 0.25, "state": 0.05, "total": 0.3}},
	"market": {"demand": 70, "competition": 50, "growth": 0.1, "outlook": "stable"},
	"analysis": {"overallScore": 75, "pros": ["Strong market"]}
}`

// newTestService wires a pipeline service entirely from fakes, with an
// in-memory cache.
func newTestService(t *testing.T, classify, signalsProvider, synth *fakeProvider, cfg *config.Config) *Service {
	t.Helper()
	logger := testLogger()

	analysisCache, err := cache.New(config.CacheConfig{TTL: time.Hour, MaxMemoryEntries: 100}, logger)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { _ = analysisCache.Close() })

	if cfg == nil {
		cfg = &config.Config{Pipeline: config.PipelineConfig{AdapterTimeout: 5 * time.Second}}
	}

	classifySvc := &ai.Service{Provider: classify, OperationType: "classify"}
	signalsSvc := &ai.Service{Provider: signalsProvider, OperationType: "signals"}
	synthSvc := &ai.Service{Provider: synth, OperationType: "synthesize"}

	return &Service{
		assembler: NewAssembler(
			NewClassifier(classifySvc, nil, logger),
			signals.NewFetcher(signalsSvc, nil, cfg.Pipeline.AdapterTimeout, logger),
			nil, logger),
		synthesizer:     NewSynthesizer(synthSvc, nil, logger),
		validator:       NewValidator(logger),
		scorer:          NewScorer(),
		cache:           analysisCache,
		config:          cfg,
		logger:          logger,
		classifyService: classifySvc,
		signalsService:  signalsSvc,
		synthService:    synthSvc,
	}
}

func analyzeRequest() types.AnalyzeRequest {
	return types.AnalyzeRequest{
		JobDescription: "Senior Backend Engineer building payment APIs in Go.",
		UserID:         "user-1",
	}
}

func TestAnalyzeSecondRequestServedFromCache(t *testing.T) {
	synth := &fakeProvider{response: synthResponse}
	svc := newTestService(t,
		&fakeProvider{response: classifyResponse},
		&fakeProvider{response: signalResponse},
		synth, nil)

	first, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first request must compute, not hit the cache")
	}
	if first.Analysis.Role.Title != "Backend Engineer" {
		t.Errorf("expected synthesized title, got %q", first.Analysis.Role.Title)
	}
	if first.Analysis.Confidence.Overall <= 0 {
		t.Errorf("healthy pipeline must yield positive confidence, got %v", first.Analysis.Confidence.Overall)
	}

	second, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("identical second request must be served from cache")
	}
	if second.CacheAge == "" {
		t.Error("cached result must report its age")
	}
	if synth.callCount() != 1 {
		t.Errorf("cached request must not re-run synthesis, got %d calls", synth.callCount())
	}
}

func TestAnalyzeForceRefreshRecomputes(t *testing.T) {
	synth := &fakeProvider{response: synthResponse}
	svc := newTestService(t,
		&fakeProvider{response: classifyResponse},
		&fakeProvider{response: signalResponse},
		synth, nil)

	if _, err := svc.Analyze(context.Background(), analyzeRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := analyzeRequest()
	req.ForceRefresh = true
	res, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached {
		t.Error("forceRefresh must bypass the cache")
	}
	if synth.callCount() != 2 {
		t.Errorf("forceRefresh must re-run synthesis, got %d calls", synth.callCount())
	}
}

func TestAnalyzeSentinelKeepsZeroConfidence(t *testing.T) {
	// Healthy classification and signals; only the synthesis output is
	// garbage. The failure report must not inherit the healthy signals'
	// confidence.
	svc := newTestService(t,
		&fakeProvider{response: classifyResponse},
		&fakeProvider{response: signalResponse},
		&fakeProvider{response: "I could not produce the analysis."}, nil)

	res, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("lenient synthesis failure must not be a hard error: %v", err)
	}
	if res.Cached {
		t.Error("sentinel result must not be served as cached")
	}
	if res.Analysis.Role.Title != "Analysis Failed" {
		t.Fatalf("expected sentinel analysis, got title %q", res.Analysis.Role.Title)
	}
	if res.Analysis.Confidence.Overall != 0 {
		t.Errorf("sentinel must keep zero overall confidence, got %v", res.Analysis.Confidence.Overall)
	}
	if res.Analysis.Confidence.EstimateType != types.EstimateAI {
		t.Errorf("sentinel estimate type must stay %s, got %s", types.EstimateAI, res.Analysis.Confidence.EstimateType)
	}
	if res.Analysis.Confidence.Disclaimer != "This analysis failed to complete and contains no usable figures." {
		t.Errorf("sentinel must keep its own disclaimer, got %q", res.Analysis.Confidence.Disclaimer)
	}
	if sr := res.Analysis.Compensation.SalaryRange; sr.Min != 0 || sr.Max != 0 || sr.Confidence != 0 {
		t.Errorf("sentinel must not carry salary figures or salary confidence, got %+v", sr)
	}
}

func TestAnalyzeSentinelNotCached(t *testing.T) {
	synth := &fakeProvider{response: "not json"}
	svc := newTestService(t,
		&fakeProvider{response: classifyResponse},
		&fakeProvider{response: signalResponse},
		synth, nil)

	res, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Analysis.Role.Title != "Analysis Failed" {
		t.Fatalf("expected sentinel analysis, got title %q", res.Analysis.Role.Title)
	}

	// Synthesis recovers; the same request must retry instead of
	// replaying the memoized failure.
	synth.setResponse(synthResponse)

	res, err = svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached {
		t.Error("transient failure must not be memoized")
	}
	if res.Analysis.Role.Title != "Backend Engineer" {
		t.Errorf("retry after recovery must yield a real analysis, got title %q", res.Analysis.Role.Title)
	}

	res, err = svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Cached {
		t.Error("successful analysis must be memoized")
	}
}

func TestAnalyzeStrictSynthesisFailsHard(t *testing.T) {
	cfg := &config.Config{Pipeline: config.PipelineConfig{
		AdapterTimeout:  5 * time.Second,
		StrictSynthesis: true,
	}}
	svc := newTestService(t,
		&fakeProvider{response: classifyResponse},
		&fakeProvider{response: signalResponse},
		&fakeProvider{response: "not json"}, cfg)

	_, err := svc.Analyze(context.Background(), analyzeRequest())
	if err == nil {
		t.Fatal("strict synthesis must surface unparseable output as an error")
	}
	if scopeErrors.GetErrorCode(err) != scopeErrors.ErrCodeSynthesisParse {
		t.Errorf("expected error code %s, got %s", scopeErrors.ErrCodeSynthesisParse, scopeErrors.GetErrorCode(err))
	}
}

func TestAnalyzeAllSourcesDegradedStillSucceeds(t *testing.T) {
	failure := scopeErrors.NewAIError(scopeErrors.ErrCodeUpstreamUnavailable, "provider down", nil)
	svc := newTestService(t,
		&fakeProvider{err: failure},
		&fakeProvider{err: failure},
		&fakeProvider{response: synthResponse}, nil)

	res, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("degraded sources must not fail the request: %v", err)
	}
	if res.Analysis.Role.Title != "Backend Engineer" {
		t.Errorf("expected a structurally valid analysis, got title %q", res.Analysis.Role.Title)
	}
	if math.Abs(res.Analysis.Confidence.Overall-signals.FailedSignalConfidence) > 1e-9 {
		t.Errorf("all-failed signals should score %v overall, got %v",
			signals.FailedSignalConfidence, res.Analysis.Confidence.Overall)
	}
	if res.Analysis.Confidence.EstimateType != types.EstimateAI {
		t.Errorf("failed salary signals must classify as %s, got %s",
			types.EstimateAI, res.Analysis.Confidence.EstimateType)
	}
}

func TestAnalyzeRejectsEmptyJobDescription(t *testing.T) {
	svc := newTestService(t,
		&fakeProvider{response: classifyResponse},
		&fakeProvider{response: signalResponse},
		&fakeProvider{response: synthResponse}, nil)

	_, err := svc.Analyze(context.Background(), types.AnalyzeRequest{JobDescription: "   "})
	if err == nil {
		t.Fatal("expected an error for a blank job description")
	}
	if scopeErrors.GetErrorCode(err) != scopeErrors.ErrCodeInvalidRequest {
		t.Errorf("expected error code %s, got %s", scopeErrors.ErrCodeInvalidRequest, scopeErrors.GetErrorCode(err))
	}
}
