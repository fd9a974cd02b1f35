package types

import "time"

// Signal is one immutable, confidence-tagged datum returned by a single
// external-data adapter. A Confidence of 0 marks an unusable placeholder
// produced when an adapter was skipped; failed fetches carry a low but
// non-zero confidence so the failure reason stays visible downstream.
type Signal struct {
	SourceID   string         `json:"sourceId"`
	Confidence float64        `json:"confidence"`
	Timestamp  time.Time      `json:"timestamp"`
	Payload    map[string]any `json:"payload"`
}

// Failed reports whether this signal was produced from an adapter failure.
func (s Signal) Failed() bool {
	if s.Payload == nil {
		return false
	}
	_, ok := s.Payload["error"]
	return ok
}

// Placeholder reports whether this signal is an unusable zero-confidence stub.
func (s Signal) Placeholder() bool {
	return s.Confidence == 0
}

// RAGContext is the full aggregated set of signals assembled for one
// analysis request. It is built fresh per uncached request and discarded
// after synthesis.
type RAGContext struct {
	JobAnalysis        Signal   `json:"jobAnalysis"`
	SalarySignals      []Signal `json:"salarySignals"`
	CostOfLiving       Signal   `json:"costOfLiving"`
	EconomicIndicators Signal   `json:"economicIndicators"`
	CompanyIntel       Signal   `json:"companyIntelligence"`
	IndustryTrends     Signal   `json:"industryTrends"`
	MarketSentiment    Signal   `json:"marketSentiment"`
	CompetitorAnalysis Signal   `json:"competitorAnalysis"`
}

// AllSignals returns every signal in the context in a stable order.
func (rc *RAGContext) AllSignals() []Signal {
	signals := make([]Signal, 0, len(rc.SalarySignals)+7)
	signals = append(signals, rc.JobAnalysis)
	signals = append(signals, rc.SalarySignals...)
	signals = append(signals,
		rc.CostOfLiving,
		rc.EconomicIndicators,
		rc.CompanyIntel,
		rc.IndustryTrends,
		rc.MarketSentiment,
		rc.CompetitorAnalysis,
	)
	return signals
}

// RoleProfile describes the classified role
type RoleProfile struct {
	Title             string   `json:"title"`
	NormalizedTitle   string   `json:"normalizedTitle"`
	SeniorityLevel    string   `json:"seniorityLevel"`
	Industry          string   `json:"industry"`
	SkillsRequired    []string `json:"skillsRequired"`
	ExperienceLevel   string   `json:"experienceLevel"`
	MarketDemand      string   `json:"marketDemand"`
	JobType           string   `json:"jobType"`
	WorkMode          string   `json:"workMode"`
	CompensationModel string   `json:"compensationModel"`
}

// SalaryRange is the core salary estimate
type SalaryRange struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Median     float64 `json:"median"`
	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence"`
}

// TotalCompensation breaks annual compensation into components
type TotalCompensation struct {
	Base     float64 `json:"base"`
	Bonus    float64 `json:"bonus"`
	Equity   float64 `json:"equity"`
	Benefits float64 `json:"benefits"`
	Total    float64 `json:"total"`
}

// CompensationBlock groups the salary estimates and market positioning
type CompensationBlock struct {
	SalaryRange       SalaryRange       `json:"salaryRange"`
	TotalCompensation TotalCompensation `json:"totalCompensation"`
	MarketPosition    string            `json:"marketPosition"`
	NegotiationPower  string            `json:"negotiationPower"`
}

// TaxRates holds effective tax rates as decimals in [0,1]
type TaxRates struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	Local   float64 `json:"local"`
	Total   float64 `json:"total"`
}

// LocationBlock covers the cost-of-living adjustments for the effective
// analysis location
type LocationBlock struct {
	JobLocation       string   `json:"jobLocation"`
	UserLocation      string   `json:"userLocation,omitempty"`
	IsRemote          bool     `json:"isRemote"`
	EffectiveLocation string   `json:"effectiveLocation"`
	CostOfLiving      float64  `json:"costOfLiving"`
	HousingCosts      float64  `json:"housingCosts"`
	Taxes             TaxRates `json:"taxes"`
	QualityOfLife     float64  `json:"qualityOfLife"`
	MarketMultiplier  float64  `json:"marketMultiplier"`
	SalaryAdjustment  string   `json:"salaryAdjustment,omitempty"`
}

// MarketBlock covers demand-side indicators
type MarketBlock struct {
	Demand       float64  `json:"demand"`
	Competition  float64  `json:"competition"`
	Growth       float64  `json:"growth"`
	Outlook      string   `json:"outlook"`
	TimeToHire   string   `json:"timeToHire"`
	Alternatives []string `json:"alternatives"`
}

// AnalysisBlock is the qualitative assessment
type AnalysisBlock struct {
	OverallScore    float64  `json:"overallScore"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	Risks           []string `json:"risks"`
	Opportunities   []string `json:"opportunities"`
	Recommendations []string `json:"recommendations"`
}

// Estimate provenance classification for the salary figure
const (
	EstimatePostedSalary      = "posted_salary"
	EstimateMarketCalculation = "market_calculation"
	EstimateAI                = "ai_estimate"
)

// ConfidenceBlock tags every part of the report with provenance-aware scores
type ConfidenceBlock struct {
	Overall      float64  `json:"overall"`
	Salary       float64  `json:"salary"`
	Market       float64  `json:"market"`
	Location     float64  `json:"location"`
	DataSources  []string `json:"dataSources"`
	EstimateType string   `json:"estimateType"`
	Disclaimer   string   `json:"disclaimer,omitempty"`
}

// CompensationAnalysis is the output contract of the pipeline
type CompensationAnalysis struct {
	Role         RoleProfile       `json:"role"`
	Compensation CompensationBlock `json:"compensation"`
	Location     LocationBlock     `json:"location"`
	Market       MarketBlock       `json:"market"`
	Analysis     AnalysisBlock     `json:"analysis"`
	Confidence   ConfidenceBlock   `json:"confidence"`
}

// AnalyzeRequest is the input to the analysis pipeline
type AnalyzeRequest struct {
	JobDescription string `json:"jobDescription"`
	JobLocation    string `json:"jobLocation,omitempty"`
	Company        string `json:"company,omitempty"`
	UserLocation   string `json:"userLocation,omitempty"`

	// Cache-key attributes; JobID defaults to a content hash of the
	// job description when empty.
	JobID       string `json:"jobId,omitempty"`
	UserID      string `json:"userId,omitempty"`
	ProfileHash string `json:"profileHash,omitempty"`
	WorkMode    string `json:"workMode,omitempty"`
	Currency    string `json:"currency,omitempty"`

	ForceRefresh bool `json:"forceRefresh,omitempty"`
}

// CacheMetadata identifies the request a cached analysis was computed for
type CacheMetadata struct {
	JobID       string `json:"jobId"`
	UserID      string `json:"userId"`
	Location    string `json:"location"`
	ProfileHash string `json:"profileHash,omitempty"`
	Version     string `json:"version"`
}

// CacheEntry is a memoized analysis result
type CacheEntry struct {
	Key       string               `json:"key"`
	Data      CompensationAnalysis `json:"data"`
	Timestamp time.Time            `json:"timestamp"`
	TTL       time.Duration        `json:"ttl"`
	Metadata  CacheMetadata        `json:"metadata"`
}

// Stale reports whether the entry has outlived its TTL at the given instant.
func (e *CacheEntry) Stale(now time.Time) bool {
	return now.Sub(e.Timestamp) >= e.TTL
}

// AnalyzeResult wraps an analysis with its serving metadata
type AnalyzeResult struct {
	Analysis       CompensationAnalysis `json:"analysis"`
	Cached         bool                 `json:"cached"`
	CacheAge       string               `json:"cacheAge,omitempty"`
	ProcessingTime string               `json:"processingTime"`
}
