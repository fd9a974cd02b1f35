package signals

// SystemPrompt is shared by every signal source. Each source's user
// prompt narrows the request; the system prompt enforces the output
// contract the fetcher's defensive parsing depends on.
const SystemPrompt = `You are a labor-market data analyst. You provide current, realistic compensation and market data for specific roles and locations.

Rules:
- Respond with a SINGLE well-formed JSON object and nothing else
- No markdown fences, no prose before or after the JSON
- All salary figures are annual and in the local currency unless stated otherwise
- All rates (taxes, growth) are decimals, not percentages (0.25, never 25)
- Include a top-level "confidence" field between 0 and 1 reflecting how reliable your figures are for this exact role and location
- When you are uncertain, lower the confidence rather than inventing precision`

// Per-source user prompt templates. Indexed verbs so each template can
// reference only the parameters it needs:
//   %[1]s job title, %[2]s seniority, %[3]s industry,
//   %[4]s location, %[5]s company, %[6]s experience, %[7]s work mode

const laborStatisticsPrompt = `Provide government labor-statistics style wage data for the role below.

Role: %[1]s (%[2]s)
Industry: %[3]s
Location: %[4]s
Experience: %[6]s

Return a JSON object with these fields:
{
  "occupationCode": "closest standard occupational classification",
  "medianSalary": number,
  "percentile25": number,
  "percentile75": number,
  "currency": "ISO 4217 code for the location",
  "employmentGrowth": number (decimal rate),
  "totalEmployment": number,
  "dataYear": number,
  "confidence": number
}`

const jobMarketPrompt = `Estimate the live job-posting market for the role below from current posting activity.

Role: %[1]s (%[2]s)
Industry: %[3]s
Location: %[4]s
Work mode: %[7]s

Return a JSON object with these fields:
{
  "postedSalaryMin": number,
  "postedSalaryMax": number,
  "postedSalaryMedian": number,
  "currency": "ISO 4217 code",
  "activePostings": number,
  "postingTrend": "rising" | "stable" | "falling",
  "topHiringCompanies": [string],
  "commonBenefits": [string],
  "confidence": number
}`

const costOfLivingPrompt = `Provide cost-of-living data for the location below, for a professional considering a role there.

Location: %[4]s

Return a JSON object with these fields:
{
  "costIndex": number (100 = US national average),
  "monthlyHousingCost": number (typical monthly rent for a one-bedroom, local currency),
  "monthlyLivingExpenses": number (excluding housing),
  "currency": "ISO 4217 code",
  "taxRates": {"federal": number, "state": number, "local": number},
  "qualityOfLifeScore": number (0-100),
  "salaryMultiplier": number (relative to national-average compensation, 1.0 = average),
  "confidence": number
}`

const companyIntelPrompt = `Provide compensation-relevant intelligence about the company below.

Company: %[5]s
Industry: %[3]s
Role being considered: %[1]s (%[2]s)

Return a JSON object with these fields:
{
  "companySize": "startup" | "small" | "mid-size" | "large" | "enterprise",
  "fundingStage": string,
  "compensationPhilosophy": "below-market" | "at-market" | "above-market" | "unknown",
  "equityLikely": boolean,
  "glassdoorStyleRating": number (1-5),
  "recentLayoffs": boolean,
  "notes": string,
  "confidence": number
}`

const economicIndicatorsPrompt = `Provide current macro-economic indicators relevant to compensation negotiation.

Location: %[4]s
Industry: %[3]s

Return a JSON object with these fields:
{
  "inflationRate": number (decimal),
  "unemploymentRate": number (decimal),
  "sectorUnemploymentRate": number (decimal),
  "interestRateEnvironment": "low" | "moderate" | "high",
  "wageGrowthRate": number (decimal),
  "economicOutlook": "contracting" | "stable" | "expanding",
  "confidence": number
}`

const industryTrendsPrompt = `Describe current hiring and compensation trends in the industry below.

Industry: %[3]s
Role family: %[1]s
Location: %[4]s

Return a JSON object with these fields:
{
  "industryGrowth": number (decimal annual rate),
  "hiringTrend": "contracting" | "stable" | "expanding",
  "hotSkills": [string],
  "decliningSkills": [string],
  "automationRisk": "low" | "medium" | "high",
  "remotePrevalence": number (0-1 share of roles offered remote),
  "confidence": number
}`

const marketSentimentPrompt = `Assess current hiring-market sentiment for the role below.

Role: %[1]s (%[2]s)
Industry: %[3]s
Location: %[4]s

Return a JSON object with these fields:
{
  "sentiment": "pessimistic" | "neutral" | "optimistic",
  "demandScore": number (0-100),
  "competitionScore": number (0-100, how many candidates compete per opening),
  "negotiationLeverage": "employer" | "balanced" | "candidate",
  "typicalTimeToHire": string,
  "summary": string,
  "confidence": number
}`

const competitorAnalysisPrompt = `Identify employers competing for the talent profile below and how they position on pay.

Role: %[1]s (%[2]s)
Industry: %[3]s
Location: %[4]s
Company under consideration: %[5]s

Return a JSON object with these fields:
{
  "competitors": [{"name": string, "compensationPositioning": "below-market" | "at-market" | "above-market"}],
  "alternativeEmployerCount": number,
  "poachingRisk": "low" | "medium" | "high",
  "summary": string,
  "confidence": number
}`
