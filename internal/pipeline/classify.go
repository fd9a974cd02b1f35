package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salaryscope/internal/ai"
	"salaryscope/internal/config"
	"salaryscope/internal/errors"
	"salaryscope/internal/signals"
	"salaryscope/internal/types"

	"google.golang.org/genai"
)

// SourceJobAnalysis identifies the classification signal inside a RAGContext
const SourceJobAnalysis = "job-analysis"

const classifySystemPrompt = `You are a job-description classifier. Extract structured attributes from raw job-posting text.

Rules:
- Respond with a SINGLE well-formed JSON object and nothing else
- Normalize the job title to its common market form
- Use "unknown" for attributes the text does not support
- Report a posted salary ONLY when the text explicitly states one`

const classifyUserPrompt = `Classify the job posting below into structured attributes.

Job posting:
-----
%s
-----`

// Classifier turns raw job text into the structured job-analysis
// signal that seeds every downstream prompt.
type Classifier struct {
	svc     *ai.Service
	prompts *config.PromptStore
	logger  *errors.Logger
}

// NewClassifier creates a classifier backed by the classify operation service
func NewClassifier(svc *ai.Service, prompts *config.PromptStore, logger *errors.Logger) *Classifier {
	return &Classifier{svc: svc, prompts: prompts, logger: logger}
}

// Classify extracts job attributes. Like the signal adapters it never
// fails: provider or parse failures degrade into a low-confidence
// signal with an error marker so the request can still proceed.
func (c *Classifier) Classify(ctx context.Context, jobText string) (types.Signal, *ai.TokenUsage) {
	userPrompt := classifyUserPrompt
	if c.prompts != nil {
		if override, ok := c.prompts.Lookup("classify"); ok {
			userPrompt = override
		}
	}

	raw, usage, err := c.svc.Complete(ctx, "classify_job",
		classifySystemPrompt,
		fmt.Sprintf(userPrompt, jobText),
		ai.CompletionOptions{ResponseSchema: classifySchema()})
	if err != nil {
		c.logger.Warn("Job classification failed, degrading to low-confidence signal",
			"error", err.Error())
		return degradedClassification(err.Error()), usage
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(ai.CleanModelJSON(raw)), &payload); err != nil {
		c.logger.Warn("Job classification unparseable, degrading to low-confidence signal",
			"error", err.Error())
		return degradedClassification("unparseable response: " + err.Error()), usage
	}

	return types.Signal{
		SourceID:   SourceJobAnalysis,
		Confidence: 0.9,
		Timestamp:  time.Now(),
		Payload:    payload,
	}, usage
}

func degradedClassification(reason string) types.Signal {
	return types.Signal{
		SourceID:   SourceJobAnalysis,
		Confidence: signals.FailedSignalConfidence,
		Timestamp:  time.Now(),
		Payload: map[string]any{
			"error": reason,
		},
	}
}

// classifySchema constrains the classification output shape
func classifySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":           {Type: genai.TypeString},
			"normalizedTitle": {Type: genai.TypeString},
			"seniorityLevel":  {Type: genai.TypeString},
			"industry":        {Type: genai.TypeString},
			"skillsRequired": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"experienceLevel":    {Type: genai.TypeString},
			"workMode":           {Type: genai.TypeString},
			"normalizedLocation": {Type: genai.TypeString},
			"jobType":            {Type: genai.TypeString},
			"compensationModel":  {Type: genai.TypeString},
			"postedSalary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"disclosed": {Type: genai.TypeBoolean},
					"min":       {Type: genai.TypeNumber},
					"max":       {Type: genai.TypeNumber},
					"currency":  {Type: genai.TypeString},
				},
				Required: []string{"disclosed"},
			},
		},
		Required: []string{"title", "normalizedTitle", "seniorityLevel", "industry", "skillsRequired",
			"experienceLevel", "workMode", "normalizedLocation", "jobType", "compensationModel", "postedSalary"},
	}
}

// payloadString reads a string field from a loosely-typed signal payload
func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}

// PostedSalaryDisclosed reports whether the classification found an
// explicitly posted salary in the job text.
func PostedSalaryDisclosed(jobAnalysis types.Signal) bool {
	if jobAnalysis.Failed() {
		return false
	}
	posted, ok := jobAnalysis.Payload["postedSalary"].(map[string]any)
	if !ok {
		return false
	}
	disclosed, _ := posted["disclosed"].(bool)
	return disclosed
}
