package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"salaryscope/internal/ai"
	"salaryscope/internal/config"
	scopeErrors "salaryscope/internal/errors"
	"salaryscope/internal/types"
)

const synthesizeSystemPrompt = `You are a compensation analyst. You combine labor statistics, live market data, cost-of-living figures, and company intelligence into a single coherent compensation analysis.

Rules:
- Respond with a SINGLE well-formed JSON object matching the requested schema and nothing else
- Ground every figure in the supplied context data; reconcile conflicts by favoring higher-confidence sources
- All salary figures are annual
- All tax rates and growth rates are decimals (0.25, never 25)
- Housing costs are monthly figures
- Scores (demand, competition, overallScore) are 0-100
- Be honest in the pros/cons/risks analysis; do not pad weak data into strong claims`

// currencyRules maps detected regions to the currency the analysis
// must be denominated in. Embedded verbatim in the synthesis prompt.
const currencyRules = `Currency selection rules (by effective analysis location):
- United States, US cities, or "Global Remote" -> USD
- United Kingdom -> GBP
- Eurozone countries -> EUR
- Canada -> CAD
- Australia -> AUD
- India -> INR
- Japan -> JPY
- Switzerland -> CHF
- Any other location -> the national currency of that location, with salaries in local annual terms`

// salaryBands gives the model order-of-magnitude anchors so a junior
// role in a cheap market does not come back with a staff-level figure.
const salaryBands = `Plausible US-market annual salary bands (adjust for location via the cost-of-living multiplier):
- entry/junior: 50,000 - 95,000
- mid-level: 85,000 - 140,000
- senior: 120,000 - 200,000
- staff/principal: 160,000 - 280,000
- director and above: 180,000 - 350,000
No base salary should exceed 500,000 in annual local-currency terms.`

const synthesizeUserPrompt = `Produce a complete compensation analysis for the job below, synthesized from the retrieved market context.

%s

%s

Effective analysis location: %s
(Use this location, not the employer's, for cost-of-living and taxes.)

Retrieved market context (JSON, per-source confidence included; sources with an "error" or "skipped" field failed and must not be treated as data):
-----
%s
-----

Original job posting:
-----
%s
-----`

// Synthesizer turns a joined RAGContext into a draft CompensationAnalysis
// with a single low-temperature completion call. No retries: a failed
// synthesis surfaces immediately rather than being masked by backoff.
type Synthesizer struct {
	svc     *ai.Service
	prompts *config.PromptStore
	logger  *scopeErrors.Logger
}

// NewSynthesizer creates a synthesizer backed by the synthesize operation service
func NewSynthesizer(svc *ai.Service, prompts *config.PromptStore, logger *scopeErrors.Logger) *Synthesizer {
	return &Synthesizer{svc: svc, prompts: prompts, logger: logger}
}

// Synthesize runs the single synthesis call.
//
// Failure policy: if the completion service itself cannot run (network,
// quota, breaker open) the error always propagates; no numbers are ever
// fabricated in that case. If the service responded but the output is
// empty or unparseable, the draft degrades to a zero-confidence sentinel
// analysis unless strict is set, in which case it is a hard failure.
// The returned degraded flag is true exactly when the draft is the
// sentinel; callers must not rescore or memoize a degraded draft.
func (s *Synthesizer) Synthesize(ctx context.Context, ragCtx *types.RAGContext, jobText, effectiveLocation string, strict bool) (types.CompensationAnalysis, *ai.TokenUsage, bool, error) {
	contextJSON, err := json.MarshalIndent(ragCtx, "", "  ")
	if err != nil {
		return types.CompensationAnalysis{}, nil, false, scopeErrors.NewInternalError(scopeErrors.ErrCodeInternalError,
			"Failed to serialize analysis context", err)
	}

	userPrompt := synthesizeUserPrompt
	if s.prompts != nil {
		if override, ok := s.prompts.Lookup("synthesize"); ok {
			userPrompt = override
		}
	}

	raw, usage, err := s.svc.Complete(ctx, "synthesize_analysis",
		synthesizeSystemPrompt,
		fmt.Sprintf(userPrompt, currencyRules, salaryBands, effectiveLocation, string(contextJSON), jobText),
		ai.CompletionOptions{ResponseSchema: analysisSchema()})
	if err != nil {
		if scopeErrors.GetErrorCode(err) == scopeErrors.ErrCodeSynthesisEmpty {
			return s.handleParseFailure("empty synthesis response", usage, strict, err)
		}
		return types.CompensationAnalysis{}, usage, false, err
	}

	var draft types.CompensationAnalysis
	if err := json.Unmarshal([]byte(ai.CleanModelJSON(raw)), &draft); err != nil {
		return s.handleParseFailure("unparseable synthesis response: "+err.Error(), usage, strict, err)
	}

	return draft, usage, false, nil
}

func (s *Synthesizer) handleParseFailure(reason string, usage *ai.TokenUsage, strict bool, cause error) (types.CompensationAnalysis, *ai.TokenUsage, bool, error) {
	if strict {
		return types.CompensationAnalysis{}, usage, false, scopeErrors.NewAIError(scopeErrors.ErrCodeSynthesisParse,
			"Synthesis produced no usable analysis", cause)
	}

	s.logger.Warn("Synthesis unusable, returning sentinel analysis", "reason", reason)
	return SentinelAnalysis(reason), usage, true, nil
}

// SentinelAnalysis is the well-typed failure analysis returned on the
// lenient path: syntactically valid, zero-valued, and explicit about
// why so it can be rendered or retried by the caller.
func SentinelAnalysis(reason string) types.CompensationAnalysis {
	return types.CompensationAnalysis{
		Role: types.RoleProfile{
			Title:           "Analysis Failed",
			NormalizedTitle: "analysis-failed",
			SeniorityLevel:  "unknown",
			Industry:        "unknown",
			ExperienceLevel: "unknown",
			MarketDemand:    "unknown",
			JobType:         "unknown",
			WorkMode:        "unknown",
		},
		Compensation: types.CompensationBlock{
			SalaryRange: types.SalaryRange{Currency: "USD"},
		},
		Location: types.LocationBlock{
			EffectiveLocation: GlobalRemoteLocation,
		},
		Market: types.MarketBlock{
			Outlook: "unknown",
		},
		Analysis: types.AnalysisBlock{
			Cons: []string{"Analysis could not be completed: " + reason},
			Recommendations: []string{
				"Retry the analysis; the completion service returned an unusable response",
			},
		},
		Confidence: types.ConfidenceBlock{
			Overall:      0,
			EstimateType: types.EstimateAI,
			Disclaimer:   "This analysis failed to complete and contains no usable figures.",
		},
	}
}
