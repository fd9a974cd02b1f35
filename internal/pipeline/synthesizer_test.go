package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"salaryscope/internal/ai"
	scopeErrors "salaryscope/internal/errors"
	"salaryscope/internal/types"
)

// fakeProvider returns a canned completion response or error. Safe for
// concurrent use so it can back the signal fan-out.
type fakeProvider struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Complete(_ context.Context, _, _, _ string, _ ai.CompletionOptions) (string, *ai.TokenUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", nil, f.err
	}
	return f.response, &ai.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}, nil
}

func (f *fakeProvider) setResponse(response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.response = response
	f.err = nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) GetModelInfo(context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "fake-model", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

func fakeService(provider *fakeProvider) *ai.Service {
	return &ai.Service{Provider: provider, OperationType: "synthesize"}
}

func testLogger() *scopeErrors.Logger {
	return scopeErrors.NewLogger(slog.LevelError)
}

func TestSynthesizeParsesDraft(t *testing.T) {
	provider := &fakeProvider{response: `{
		"role": {"title": "Backend Engineer", "seniorityLevel": "senior"},
		"compensation": {"salaryRange": {"min": 120000, "max": 180000, "median": 150000, "currency": "USD"}}
	}`}
	s := NewSynthesizer(fakeService(provider), nil, testLogger())

	draft, usage, degraded, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Berlin, Germany", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if degraded {
		t.Error("a parsed draft must not be flagged as degraded")
	}
	if draft.Role.Title != "Backend Engineer" {
		t.Errorf("expected parsed title, got %q", draft.Role.Title)
	}
	if draft.Compensation.SalaryRange.Median != 150000 {
		t.Errorf("expected median 150000, got %v", draft.Compensation.SalaryRange.Median)
	}
	if usage == nil || usage.TotalTokens != 150 {
		t.Errorf("expected token usage passthrough, got %+v", usage)
	}
	if provider.calls != 1 {
		t.Errorf("expected exactly one completion call, got %d", provider.calls)
	}
}

func TestSynthesizeStripsMarkdownFences(t *testing.T) {
	provider := &fakeProvider{response: "```json\n{\"role\": {\"title\": \"Data Engineer\"}}\n```"}
	s := NewSynthesizer(fakeService(provider), nil, testLogger())

	draft, _, _, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Austin, TX", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Role.Title != "Data Engineer" {
		t.Errorf("expected fenced JSON to parse, got title %q", draft.Role.Title)
	}
}

func TestSynthesizeProviderErrorAlwaysPropagates(t *testing.T) {
	cause := scopeErrors.NewAIError(scopeErrors.ErrCodeUpstreamUnavailable, "Completion service unavailable", nil)

	for _, strict := range []bool{false, true} {
		provider := &fakeProvider{err: cause}
		s := NewSynthesizer(fakeService(provider), nil, testLogger())

		_, _, _, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Austin, TX", strict)
		if err == nil {
			t.Fatalf("strict=%v: expected a hard error when the provider fails", strict)
		}
		if scopeErrors.GetErrorCode(err) != scopeErrors.ErrCodeUpstreamUnavailable {
			t.Errorf("strict=%v: expected error code %s, got %s",
				strict, scopeErrors.ErrCodeUpstreamUnavailable, scopeErrors.GetErrorCode(err))
		}
	}
}

func TestSynthesizeUnparseableLenient(t *testing.T) {
	provider := &fakeProvider{response: "I am sorry, I could not produce the analysis."}
	s := NewSynthesizer(fakeService(provider), nil, testLogger())

	draft, _, degraded, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Austin, TX", false)
	if err != nil {
		t.Fatalf("lenient mode should degrade to the sentinel, got error: %v", err)
	}
	if !degraded {
		t.Error("sentinel draft must be flagged as degraded")
	}
	if draft.Role.Title != "Analysis Failed" {
		t.Errorf("expected sentinel analysis, got title %q", draft.Role.Title)
	}
	if draft.Confidence.Overall != 0 {
		t.Errorf("sentinel analysis must have zero confidence, got %v", draft.Confidence.Overall)
	}
	if draft.Confidence.EstimateType != types.EstimateAI {
		t.Errorf("expected estimate type %s, got %s", types.EstimateAI, draft.Confidence.EstimateType)
	}
}

func TestSynthesizeUnparseableStrict(t *testing.T) {
	provider := &fakeProvider{response: "not json at all"}
	s := NewSynthesizer(fakeService(provider), nil, testLogger())

	_, _, _, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Austin, TX", true)
	if err == nil {
		t.Fatal("strict mode must fail on unparseable output")
	}
	if scopeErrors.GetErrorCode(err) != scopeErrors.ErrCodeSynthesisParse {
		t.Errorf("expected error code %s, got %s", scopeErrors.ErrCodeSynthesisParse, scopeErrors.GetErrorCode(err))
	}
}

func TestSynthesizeEmptyResponseStrict(t *testing.T) {
	cause := scopeErrors.NewAIError(scopeErrors.ErrCodeSynthesisEmpty, "Empty response from model", nil)
	provider := &fakeProvider{err: cause}
	s := NewSynthesizer(fakeService(provider), nil, testLogger())

	_, _, _, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Austin, TX", true)
	if err == nil {
		t.Fatal("strict mode must fail on an empty response")
	}
	if scopeErrors.GetErrorCode(err) != scopeErrors.ErrCodeSynthesisParse {
		t.Errorf("expected error code %s, got %s", scopeErrors.ErrCodeSynthesisParse, scopeErrors.GetErrorCode(err))
	}
}

func TestSynthesizeEmptyResponseLenient(t *testing.T) {
	cause := scopeErrors.NewAIError(scopeErrors.ErrCodeSynthesisEmpty, "Empty response from model", nil)
	provider := &fakeProvider{err: cause}
	s := NewSynthesizer(fakeService(provider), nil, testLogger())

	draft, _, degraded, err := s.Synthesize(context.Background(), &types.RAGContext{}, "job text", "Austin, TX", false)
	if err != nil {
		t.Fatalf("lenient mode should degrade to the sentinel, got error: %v", err)
	}
	if !degraded {
		t.Error("sentinel draft must be flagged as degraded")
	}
	if draft.Role.Title != "Analysis Failed" {
		t.Errorf("expected sentinel analysis, got title %q", draft.Role.Title)
	}
}

func TestSentinelAnalysisShape(t *testing.T) {
	sentinel := SentinelAnalysis("empty synthesis response")

	if sentinel.Compensation.SalaryRange.Min != 0 || sentinel.Compensation.SalaryRange.Max != 0 {
		t.Error("sentinel must not carry fabricated salary figures")
	}
	if sentinel.Location.EffectiveLocation != GlobalRemoteLocation {
		t.Errorf("expected effective location %q, got %q", GlobalRemoteLocation, sentinel.Location.EffectiveLocation)
	}
	if len(sentinel.Analysis.Cons) == 0 {
		t.Error("sentinel must state why the analysis failed")
	}
	if sentinel.Confidence.Disclaimer == "" {
		t.Error("sentinel must carry a disclaimer")
	}
}
