// Package synthesis runs the final generative stage: turning the computed
// ratio set into a structured solvency document. Two prompt variants exist,
// the French rental-solvency analysis (default) and the English
// report-schema output.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/core/utils"
)

// Variants selectable through configuration.
const (
	VariantSolvencyFR = "solvency_fr"
	VariantReportEN   = "report_en"
)

// Input is everything the synthesis prompt needs.
type Input struct {
	CompanyName  string
	AnnualRent   float64
	RatiosJSON   string // canonical output of the ratio stage
	Supplemental string // optional search briefing, empty when unavailable
}

// MalformedJSONError carries a snippet of unparseable model output.
type MalformedJSONError struct {
	Snippet string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("synthesis output is not valid JSON: %s", e.Snippet)
}

// Result is the decoded synthesis document plus its canonical JSON text.
type Result struct {
	Raw string
	Doc map[string]interface{}
}

// Synthesizer drives the synthesis prompt against the analysis model.
type Synthesizer struct {
	Analysis llm.AnalysisProvider
	Prompts  *prompt.Registry
	Variant  string
}

func NewSynthesizer(analysis llm.AnalysisProvider) *Synthesizer {
	return &Synthesizer{Analysis: analysis, Prompts: prompt.Get(), Variant: VariantSolvencyFR}
}

func (s *Synthesizer) templateID() string {
	if s.Variant == VariantReportEN {
		return prompt.SynthesisReportEN
	}
	return prompt.SynthesisSolvencyFR
}

// Synthesize renders the selected variant and decodes the model's document.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (*Result, error) {
	vars := map[string]interface{}{
		"CompanyName":  in.CompanyName,
		"AnnualRent":   in.AnnualRent,
		"Ratios":       in.RatiosJSON,
		"Analysis":     in.RatiosJSON,
		"Supplemental": in.Supplemental,
	}
	user, system, err := s.Prompts.Render(s.templateID(), vars)
	if err != nil {
		return nil, err
	}

	text, err := s.Analysis.GenerateAnalysis(ctx, user, system)
	if err != nil {
		return nil, err
	}
	return s.parse(text, in.CompanyName)
}

func (s *Synthesizer) parse(text string, companyName string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &MalformedJSONError{Snippet: "(empty)"}
	}
	var doc map[string]interface{}
	if _, err := utils.SmartParse(text, &doc); err != nil {
		return nil, &MalformedJSONError{Snippet: utils.Truncate(text, 200)}
	}
	if _, ok := doc["companyName"]; !ok && companyName != "" {
		doc["companyName"] = companyName
	}
	if s.Variant == VariantReportEN {
		NormalizeSections(doc)
		NormalizeMonetary(doc)
	}

	raw, err := canonicalJSON(doc)
	if err != nil {
		return nil, err
	}
	return &Result{Raw: raw, Doc: doc}, nil
}
