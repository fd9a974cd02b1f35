package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"salaryscope/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "CompensationAnalysis", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "CompensationAnalysis", &AnalysisMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CompensationAnalysis:
		return "CompensationAnalysis"
	case types.AnalyzeResult:
		return "CompensationAnalysis"
	default:
		return "any"
	}
}

// unwrapAnalysis accepts either the bare analysis or the full result envelope
func unwrapAnalysis(data any) (types.CompensationAnalysis, bool) {
	switch v := data.(type) {
	case types.CompensationAnalysis:
		return v, true
	case types.AnalyzeResult:
		return v.Analysis, true
	default:
		return types.CompensationAnalysis{}, false
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for compensation analyses
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := unwrapAnalysis(data)
	if !ok {
		return "", fmt.Errorf("expected CompensationAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== COMPENSATION ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Role: %s (%s)\n", result.Role.Title, result.Role.SeniorityLevel))
	output.WriteString(fmt.Sprintf("Industry: %s\n", result.Role.Industry))
	output.WriteString(fmt.Sprintf("Work Mode: %s\n", result.Role.WorkMode))
	if len(result.Role.SkillsRequired) > 0 {
		output.WriteString(fmt.Sprintf("Key Skills: %s\n", strings.Join(result.Role.SkillsRequired, ", ")))
	}
	output.WriteString("\n")

	output.WriteString("=== SALARY ===\n")
	sr := result.Compensation.SalaryRange
	output.WriteString(fmt.Sprintf("Range: %s %s - %s (median %s)\n",
		sr.Currency, formatMoney(sr.Min), formatMoney(sr.Max), formatMoney(sr.Median)))
	tc := result.Compensation.TotalCompensation
	output.WriteString(fmt.Sprintf("Total Compensation: %s (base %s, bonus %s, equity %s, benefits %s)\n",
		formatMoney(tc.Total), formatMoney(tc.Base), formatMoney(tc.Bonus),
		formatMoney(tc.Equity), formatMoney(tc.Benefits)))
	if result.Compensation.MarketPosition != "" {
		output.WriteString(fmt.Sprintf("Market Position: %s\n", result.Compensation.MarketPosition))
	}
	if result.Compensation.NegotiationPower != "" {
		output.WriteString(fmt.Sprintf("Negotiation Power: %s\n", result.Compensation.NegotiationPower))
	}
	output.WriteString("\n")

	output.WriteString("=== LOCATION ===\n")
	output.WriteString(fmt.Sprintf("Effective Location: %s\n", result.Location.EffectiveLocation))
	output.WriteString(fmt.Sprintf("Cost of Living Index: %.1f\n", result.Location.CostOfLiving))
	output.WriteString(fmt.Sprintf("Monthly Housing: %s\n", formatMoney(result.Location.HousingCosts)))
	output.WriteString(fmt.Sprintf("Effective Tax Rate: %.1f%%\n", result.Location.Taxes.Total*100))
	output.WriteString("\n")

	output.WriteString("=== MARKET ===\n")
	output.WriteString(fmt.Sprintf("Demand: %.0f/100, Competition: %.0f/100\n",
		result.Market.Demand, result.Market.Competition))
	output.WriteString(fmt.Sprintf("Growth: %.1f%%, Outlook: %s\n",
		result.Market.Growth*100, result.Market.Outlook))
	if result.Market.TimeToHire != "" {
		output.WriteString(fmt.Sprintf("Typical Time to Hire: %s\n", result.Market.TimeToHire))
	}
	output.WriteString("\n")

	output.WriteString("=== ASSESSMENT ===\n")
	output.WriteString(fmt.Sprintf("Overall Score: %.0f/100\n\n", result.Analysis.OverallScore))
	writeTextList(&output, "Pros", result.Analysis.Pros)
	writeTextList(&output, "Cons", result.Analysis.Cons)
	writeTextList(&output, "Risks", result.Analysis.Risks)
	writeTextList(&output, "Opportunities", result.Analysis.Opportunities)
	writeTextList(&output, "Recommendations", result.Analysis.Recommendations)

	output.WriteString("=== CONFIDENCE ===\n")
	output.WriteString(fmt.Sprintf("Overall: %.0f%% (salary %.0f%%, market %.0f%%, location %.0f%%)\n",
		result.Confidence.Overall*100, result.Confidence.Salary*100,
		result.Confidence.Market*100, result.Confidence.Location*100))
	output.WriteString(fmt.Sprintf("Estimate Type: %s\n", result.Confidence.EstimateType))
	if len(result.Confidence.DataSources) > 0 {
		output.WriteString(fmt.Sprintf("Data Sources: %s\n", strings.Join(result.Confidence.DataSources, ", ")))
	}
	if result.Confidence.Disclaimer != "" {
		output.WriteString(fmt.Sprintf("Disclaimer: %s\n", result.Confidence.Disclaimer))
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "CompensationAnalysis"
}

// AnalysisMarkdownFormatter handles markdown formatting for compensation analyses
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := unwrapAnalysis(data)
	if !ok {
		return "", fmt.Errorf("expected CompensationAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Compensation Analysis: %s\n\n", result.Role.Title))
	output.WriteString(fmt.Sprintf("**Seniority:** %s | **Industry:** %s | **Work Mode:** %s\n\n",
		result.Role.SeniorityLevel, result.Role.Industry, result.Role.WorkMode))

	output.WriteString("## Salary\n\n")
	sr := result.Compensation.SalaryRange
	output.WriteString(fmt.Sprintf("**Range:** %s %s - %s (median %s)\n\n",
		sr.Currency, formatMoney(sr.Min), formatMoney(sr.Max), formatMoney(sr.Median)))
	tc := result.Compensation.TotalCompensation
	output.WriteString("| Component | Annual |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Base | %s |\n", formatMoney(tc.Base)))
	output.WriteString(fmt.Sprintf("| Bonus | %s |\n", formatMoney(tc.Bonus)))
	output.WriteString(fmt.Sprintf("| Equity | %s |\n", formatMoney(tc.Equity)))
	output.WriteString(fmt.Sprintf("| Benefits | %s |\n", formatMoney(tc.Benefits)))
	output.WriteString(fmt.Sprintf("| **Total** | **%s** |\n\n", formatMoney(tc.Total)))

	output.WriteString("## Location\n\n")
	output.WriteString(fmt.Sprintf("**Effective Location:** %s\n\n", result.Location.EffectiveLocation))
	output.WriteString(fmt.Sprintf("- Cost of living index: %.1f\n", result.Location.CostOfLiving))
	output.WriteString(fmt.Sprintf("- Monthly housing: %s\n", formatMoney(result.Location.HousingCosts)))
	output.WriteString(fmt.Sprintf("- Effective tax rate: %.1f%%\n\n", result.Location.Taxes.Total*100))

	output.WriteString("## Market\n\n")
	output.WriteString(fmt.Sprintf("- Demand: %.0f/100\n", result.Market.Demand))
	output.WriteString(fmt.Sprintf("- Competition: %.0f/100\n", result.Market.Competition))
	output.WriteString(fmt.Sprintf("- Growth: %.1f%%\n", result.Market.Growth*100))
	output.WriteString(fmt.Sprintf("- Outlook: %s\n\n", result.Market.Outlook))

	output.WriteString("## Assessment\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %.0f/100\n\n", result.Analysis.OverallScore))
	writeMarkdownList(&output, "Pros", result.Analysis.Pros)
	writeMarkdownList(&output, "Cons", result.Analysis.Cons)
	writeMarkdownList(&output, "Risks", result.Analysis.Risks)
	writeMarkdownList(&output, "Opportunities", result.Analysis.Opportunities)
	writeMarkdownList(&output, "Recommendations", result.Analysis.Recommendations)

	output.WriteString("## Confidence\n\n")
	output.WriteString(fmt.Sprintf("**Overall:** %.0f%% | **Salary:** %.0f%% | **Market:** %.0f%% | **Location:** %.0f%%\n\n",
		result.Confidence.Overall*100, result.Confidence.Salary*100,
		result.Confidence.Market*100, result.Confidence.Location*100))
	output.WriteString(fmt.Sprintf("**Estimate Type:** %s\n\n", result.Confidence.EstimateType))
	if len(result.Confidence.DataSources) > 0 {
		output.WriteString(fmt.Sprintf("**Data Sources:** %s\n\n", strings.Join(result.Confidence.DataSources, ", ")))
	}
	if result.Confidence.Disclaimer != "" {
		output.WriteString(fmt.Sprintf("> %s\n", result.Confidence.Disclaimer))
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "CompensationAnalysis"
}

func writeTextList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(heading + ":\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("### %s\n\n", heading))
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// formatMoney renders an annual figure with thousands separators and
// no decimal noise.
func formatMoney(amount float64) string {
	whole := int64(amount)
	s := fmt.Sprintf("%d", whole)
	if whole < 0 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
