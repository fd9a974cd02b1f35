package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"salaryscope/internal/ai"
	"salaryscope/internal/errors"
	"salaryscope/internal/observability"
	"salaryscope/internal/signals"
	"salaryscope/internal/types"

	"golang.org/x/sync/errgroup"
)

// GlobalRemoteLocation is the sentinel analysis location used when
// neither the user nor the job text pins one down.
const GlobalRemoteLocation = "Global Remote"

// Assembler classifies the job text and fans out to every signal
// source concurrently, joining the results into a RAGContext.
type Assembler struct {
	classifier *Classifier
	fetcher    *signals.Fetcher
	metrics    *observability.Metrics
	logger     *errors.Logger
}

// NewAssembler creates an assembler from its collaborators. metrics
// may be nil when observability is disabled.
func NewAssembler(classifier *Classifier, fetcher *signals.Fetcher, metrics *observability.Metrics, logger *errors.Logger) *Assembler {
	return &Assembler{
		classifier: classifier,
		fetcher:    fetcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Assemble builds the full RAGContext for one request. It cannot fail:
// classification and every adapter degrade internally, so the join is
// unconditional. Cancellation of ctx abandons in-flight fetches.
func (a *Assembler) Assemble(ctx context.Context, req types.AnalyzeRequest) (*types.RAGContext, *ai.TokenUsage) {
	started := time.Now()
	usage := &ai.TokenUsage{}

	jobAnalysis, classifyUsage := a.classifier.Classify(ctx, req.JobDescription)
	usage.Add(classifyUsage)

	params := a.buildFetchParams(jobAnalysis, req)

	ragCtx := &types.RAGContext{
		JobAnalysis: jobAnalysis,
	}

	var mu sync.Mutex
	salaryBySource := make(map[string]types.Signal)

	g, fetchCtx := errgroup.WithContext(ctx)
	for _, source := range signals.Registry() {
		g.Go(func() error {
			fetchStart := time.Now()
			signal, fetchUsage := a.fetcher.Fetch(fetchCtx, source, params)
			if a.metrics != nil {
				a.metrics.RecordSignalFetch(fetchCtx, source.ID, fetchOutcome(signal), time.Since(fetchStart))
			}

			mu.Lock()
			defer mu.Unlock()
			usage.Add(fetchUsage)
			switch source.ID {
			case signals.SourceLaborStatistics, signals.SourceJobMarket:
				salaryBySource[source.ID] = signal
			case signals.SourceCostOfLiving:
				ragCtx.CostOfLiving = signal
			case signals.SourceCompanyIntel:
				ragCtx.CompanyIntel = signal
			case signals.SourceEconomicIndicators:
				ragCtx.EconomicIndicators = signal
			case signals.SourceIndustryTrends:
				ragCtx.IndustryTrends = signal
			case signals.SourceMarketSentiment:
				ragCtx.MarketSentiment = signal
			case signals.SourceCompetitorAnalysis:
				ragCtx.CompetitorAnalysis = signal
			}
			return nil
		})
	}
	// Adapters never return errors; the group is used for the join and
	// context plumbing only.
	_ = g.Wait()

	// Salary signals keep their canonical order regardless of which
	// fetch finished first.
	for _, sourceID := range signals.SalarySources() {
		if signal, ok := salaryBySource[sourceID]; ok {
			ragCtx.SalarySignals = append(ragCtx.SalarySignals, signal)
		}
	}

	a.logger.Info("Context assembled",
		"job_title", params.JobTitle,
		"effective_location", params.Location,
		"signal_count", len(ragCtx.AllSignals()),
		"duration_ms", time.Since(started).Milliseconds())

	return ragCtx, usage
}

func fetchOutcome(signal types.Signal) string {
	switch {
	case signal.Placeholder():
		return "skipped"
	case signal.Failed():
		return "failed"
	default:
		return "ok"
	}
}

// buildFetchParams derives adapter parameters from the classification
// result plus request hints, resolving the effective analysis location.
func (a *Assembler) buildFetchParams(jobAnalysis types.Signal, req types.AnalyzeRequest) signals.FetchParams {
	payload := jobAnalysis.Payload

	title := payloadString(payload, "normalizedTitle")
	if title == "" {
		title = payloadString(payload, "title")
	}
	if title == "" {
		title = "Unknown Role"
	}

	workMode := req.WorkMode
	if workMode == "" {
		workMode = payloadString(payload, "workMode")
	}

	return signals.FetchParams{
		JobTitle:   title,
		Seniority:  payloadString(payload, "seniorityLevel"),
		Industry:   payloadString(payload, "industry"),
		Location:   EffectiveLocation(req, payload),
		Company:    req.Company,
		Experience: payloadString(payload, "experienceLevel"),
		WorkMode:   workMode,
	}
}

// EffectiveLocation resolves the location that drives cost-of-living
// and tax lookups. The user's location wins over the classified job
// location, which wins over the caller's raw hint; with none of those
// the role is treated as globally remote.
func EffectiveLocation(req types.AnalyzeRequest, classification map[string]any) string {
	if loc := strings.TrimSpace(req.UserLocation); loc != "" {
		return loc
	}
	if loc := strings.TrimSpace(payloadString(classification, "normalizedLocation")); loc != "" && !strings.EqualFold(loc, "unknown") {
		return loc
	}
	if loc := strings.TrimSpace(req.JobLocation); loc != "" {
		return loc
	}
	return GlobalRemoteLocation
}
