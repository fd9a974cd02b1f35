package pipeline

import "google.golang.org/genai"

// analysisSchema constrains the synthesis output to the full
// CompensationAnalysis shape. The confidence block is deliberately not
// requested from the model; it is computed by the scorer from signal
// provenance and overwrites whatever the model produced.
func analysisSchema() *genai.Schema {
	stringArray := func() *genai.Schema {
		return &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"role": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":             {Type: genai.TypeString},
					"normalizedTitle":   {Type: genai.TypeString},
					"seniorityLevel":    {Type: genai.TypeString},
					"industry":          {Type: genai.TypeString},
					"skillsRequired":    stringArray(),
					"experienceLevel":   {Type: genai.TypeString},
					"marketDemand":      {Type: genai.TypeString},
					"jobType":           {Type: genai.TypeString},
					"workMode":          {Type: genai.TypeString},
					"compensationModel": {Type: genai.TypeString},
				},
				Required: []string{"title", "normalizedTitle", "seniorityLevel", "industry", "skillsRequired",
					"experienceLevel", "marketDemand", "jobType", "workMode", "compensationModel"},
			},
			"compensation": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"salaryRange": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"min":        {Type: genai.TypeNumber},
							"max":        {Type: genai.TypeNumber},
							"median":     {Type: genai.TypeNumber},
							"currency":   {Type: genai.TypeString},
							"confidence": {Type: genai.TypeNumber},
						},
						Required: []string{"min", "max", "median", "currency"},
					},
					"totalCompensation": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"base":     {Type: genai.TypeNumber},
							"bonus":    {Type: genai.TypeNumber},
							"equity":   {Type: genai.TypeNumber},
							"benefits": {Type: genai.TypeNumber},
							"total":    {Type: genai.TypeNumber},
						},
						Required: []string{"base", "bonus", "equity", "benefits", "total"},
					},
					"marketPosition":   {Type: genai.TypeString},
					"negotiationPower": {Type: genai.TypeString},
				},
				Required: []string{"salaryRange", "totalCompensation", "marketPosition", "negotiationPower"},
			},
			"location": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"jobLocation":       {Type: genai.TypeString},
					"userLocation":      {Type: genai.TypeString},
					"isRemote":          {Type: genai.TypeBoolean},
					"effectiveLocation": {Type: genai.TypeString},
					"costOfLiving":      {Type: genai.TypeNumber},
					"housingCosts":      {Type: genai.TypeNumber},
					"taxes": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"federal": {Type: genai.TypeNumber},
							"state":   {Type: genai.TypeNumber},
							"local":   {Type: genai.TypeNumber},
							"total":   {Type: genai.TypeNumber},
						},
						Required: []string{"federal", "state", "local", "total"},
					},
					"qualityOfLife":    {Type: genai.TypeNumber},
					"marketMultiplier": {Type: genai.TypeNumber},
					"salaryAdjustment": {Type: genai.TypeString},
				},
				Required: []string{"jobLocation", "isRemote", "effectiveLocation", "costOfLiving",
					"housingCosts", "taxes", "qualityOfLife", "marketMultiplier"},
			},
			"market": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"demand":       {Type: genai.TypeNumber},
					"competition":  {Type: genai.TypeNumber},
					"growth":       {Type: genai.TypeNumber},
					"outlook":      {Type: genai.TypeString},
					"timeToHire":   {Type: genai.TypeString},
					"alternatives": stringArray(),
				},
				Required: []string{"demand", "competition", "growth", "outlook", "timeToHire", "alternatives"},
			},
			"analysis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"overallScore":    {Type: genai.TypeNumber},
					"pros":            stringArray(),
					"cons":            stringArray(),
					"risks":           stringArray(),
					"opportunities":   stringArray(),
					"recommendations": stringArray(),
				},
				Required: []string{"overallScore", "pros", "cons", "risks", "opportunities", "recommendations"},
			},
		},
		Required: []string{"role", "compensation", "location", "market", "analysis"},
	}
}
