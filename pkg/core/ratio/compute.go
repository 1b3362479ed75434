package ratio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/core/utils"
)

// MalformedJSONError carries a snippet of unparseable model output.
type MalformedJSONError struct {
	Snippet string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("ratio output is not valid JSON: %s", e.Snippet)
}

// Result is the stage output. Raw is the canonical JSON handed downstream,
// re-serialized after sentinel backfill so it always contains the full
// canonical ratio list.
type Result struct {
	Raw string
	Set Set
}

// Computer drives the ratio prompt against the analysis model.
type Computer struct {
	Analysis  llm.AnalysisProvider
	Prompts   *prompt.Registry
	Precision int
}

func NewComputer(analysis llm.AnalysisProvider) *Computer {
	return &Computer{Analysis: analysis, Prompts: prompt.Get(), Precision: 2}
}

// Compute renders the ratio prompt over the extraction JSON and decodes the
// model's structured answer.
func (c *Computer) Compute(ctx context.Context, extractionJSON string, companyName string, annualRent float64) (*Result, error) {
	user, system, err := c.Prompts.Render(prompt.RatioSolvencyFR, map[string]interface{}{
		"CompanyName": companyName,
		"AnnualRent":  annualRent,
		"Extraction":  extractionJSON,
		"Precision":   c.precision(),
	})
	if err != nil {
		return nil, err
	}

	text, err := c.Analysis.GenerateAnalysis(ctx, user, system)
	if err != nil {
		return nil, err
	}
	return Parse(text, companyName)
}

// Parse salvages and decodes raw ratio output, then backfills the sentinel
// for any canonical ratio the model skipped.
func Parse(text string, companyName string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &MalformedJSONError{Snippet: "(empty)"}
	}

	var set Set
	if _, err := utils.SmartParse(text, &set); err != nil {
		return nil, &MalformedJSONError{Snippet: utils.Truncate(text, 200)}
	}
	if set.CompanyName == "" {
		set.CompanyName = companyName
	}
	EnsureComplete(&set)

	raw, err := json.Marshal(&set)
	if err != nil {
		return nil, fmt.Errorf("re-serializing ratio set: %w", err)
	}
	return &Result{Raw: string(raw), Set: set}, nil
}

func (c *Computer) precision() int {
	if c.Precision > 0 {
		return c.Precision
	}
	return 2
}
