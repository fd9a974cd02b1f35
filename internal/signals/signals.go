package signals

// Stable source identifiers. These appear in Signal.SourceID, in the
// confidence block's dataSources list, and as prompt override file names.
const (
	SourceLaborStatistics    = "labor-statistics"
	SourceCostOfLiving       = "cost-of-living"
	SourceJobMarket          = "job-market"
	SourceCompanyIntel       = "company-intelligence"
	SourceEconomicIndicators = "economic-indicators"
	SourceIndustryTrends     = "industry-trends"
	SourceMarketSentiment    = "market-sentiment"
	SourceCompetitorAnalysis = "competitor-analysis"
)

// FailedSignalConfidence is assigned when an adapter's fetch or parse
// fails. Low but non-zero: the source was reachable enough to matter
// for provenance, unlike a skipped placeholder.
const FailedSignalConfidence = 0.3

// Source describes one signal adapter: its identity, how trustworthy
// its data is when the model cannot estimate its own confidence, and
// the prompt used to elicit it.
type Source struct {
	ID                string
	Description       string
	DefaultConfidence float64

	// RequiresCompany marks sources that are skipped (zero-confidence
	// placeholder) when no company name is available.
	RequiresCompany bool

	userPrompt string
}

// FetchParams carries the classified job attributes a source prompt
// may reference. Location is the effective analysis location, not
// necessarily the employer's.
type FetchParams struct {
	JobTitle   string
	Seniority  string
	Industry   string
	Location   string
	Company    string
	Experience string
	WorkMode   string
}

// Registry returns all signal sources in their canonical fetch order.
// The two salary signals come first; consumers that only need the
// salary list rely on this ordering.
func Registry() []Source {
	return []Source{
		{
			ID:                SourceLaborStatistics,
			Description:       "Government labor statistics and occupational wage data",
			DefaultConfidence: 0.85,
			userPrompt:        laborStatisticsPrompt,
		},
		{
			ID:                SourceJobMarket,
			Description:       "Live job-posting salary ranges and hiring volume",
			DefaultConfidence: 0.75,
			userPrompt:        jobMarketPrompt,
		},
		{
			ID:                SourceCostOfLiving,
			Description:       "Cost of living, housing, and tax burden for a location",
			DefaultConfidence: 0.8,
			userPrompt:        costOfLivingPrompt,
		},
		{
			ID:                SourceCompanyIntel,
			Description:       "Company size, funding stage, and compensation philosophy",
			DefaultConfidence: 0.7,
			RequiresCompany:   true,
			userPrompt:        companyIntelPrompt,
		},
		{
			ID:                SourceEconomicIndicators,
			Description:       "Macro-economic indicators affecting compensation",
			DefaultConfidence: 0.75,
			userPrompt:        economicIndicatorsPrompt,
		},
		{
			ID:                SourceIndustryTrends,
			Description:       "Industry growth, disruption, and hiring trends",
			DefaultConfidence: 0.7,
			userPrompt:        industryTrendsPrompt,
		},
		{
			ID:                SourceMarketSentiment,
			Description:       "Hiring-market sentiment for the role and industry",
			DefaultConfidence: 0.65,
			userPrompt:        marketSentimentPrompt,
		},
		{
			ID:                SourceCompetitorAnalysis,
			Description:       "Competing employers and their compensation positioning",
			DefaultConfidence: 0.65,
			userPrompt:        competitorAnalysisPrompt,
		},
	}
}

// SalarySources returns the IDs of sources whose payloads carry salary
// figures, in canonical order.
func SalarySources() []string {
	return []string{SourceLaborStatistics, SourceJobMarket}
}

// IsMarketSource reports whether a source ID represents market-derived
// salary data, used for estimate-type provenance classification.
func IsMarketSource(sourceID string) bool {
	switch sourceID {
	case SourceLaborStatistics, SourceJobMarket:
		return true
	}
	return false
}
