package pipeline

import (
	"salaryscope/internal/signals"
	"salaryscope/internal/types"
)

// Provenance disclaimers keyed by estimate type. The ai_estimate
// disclaimer is always attached so AI-origin figures are legible to
// end consumers.
const (
	disclaimerPosted = "Salary range is taken from the job posting itself; other figures are market estimates."
	disclaimerMarket = "Salary range is calculated from labor-market data sources, not stated in the posting."
	disclaimerAI     = "Salary range is an AI estimate with no direct market data behind it; treat it as a starting point, not an offer benchmark."
)

// Scorer aggregates per-signal confidences into the analysis-level
// confidence block and classifies the salary figure's provenance.
type Scorer struct{}

// NewScorer creates a scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the confidence block for a joined context. Zero
// confidence placeholders are excluded from the overall mean so a
// skipped source lowers coverage, not trust in the sources that ran.
func (s *Scorer) Score(ragCtx *types.RAGContext) types.ConfidenceBlock {
	block := types.ConfidenceBlock{
		EstimateType: s.classifyEstimateType(ragCtx),
	}

	var sum float64
	var count int
	for _, signal := range ragCtx.AllSignals() {
		if signal.Confidence > 0 {
			sum += signal.Confidence
			count++
			block.DataSources = append(block.DataSources, signal.SourceID)
		}
	}
	if count > 0 {
		block.Overall = sum / float64(count)
	}

	for _, signal := range ragCtx.SalarySignals {
		if signal.Confidence > block.Salary {
			block.Salary = signal.Confidence
		}
	}

	block.Market = ragCtx.MarketSentiment.Confidence
	block.Location = ragCtx.CostOfLiving.Confidence

	switch block.EstimateType {
	case types.EstimatePostedSalary:
		block.Disclaimer = disclaimerPosted
	case types.EstimateMarketCalculation:
		block.Disclaimer = disclaimerMarket
	default:
		block.Disclaimer = disclaimerAI
	}

	return block
}

// classifyEstimateType decides salary provenance in fixed priority
// order: an explicitly posted salary wins, then usable market-derived
// salary signals, then pure AI estimation.
func (s *Scorer) classifyEstimateType(ragCtx *types.RAGContext) string {
	if PostedSalaryDisclosed(ragCtx.JobAnalysis) {
		return types.EstimatePostedSalary
	}

	for _, signal := range ragCtx.SalarySignals {
		if signal.Failed() || signal.Placeholder() {
			continue
		}
		if signals.IsMarketSource(signal.SourceID) {
			return types.EstimateMarketCalculation
		}
	}

	return types.EstimateAI
}
