// Package extract runs the first pipeline stage: asking the document model
// for the standardized accounting line items of the two most recent fiscal
// years in a financial-accounts PDF.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/core/utils"
)

// LineItem is one extracted accounting entry. Labels and keys stay in French
// because the downstream prompts consume them verbatim.
type LineItem struct {
	Label string  `json:"intitulé"`
	Year  int     `json:"année"`
	Value *Amount `json:"valeur"`
}

// Amount tolerates the value shapes models actually emit: numbers, numeric
// strings, or null for data absent from the document.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("unparseable amount %s", string(data))
	}
	*a = Amount(f)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

// Float returns the numeric value, or ok=false for a missing amount.
func (l LineItem) Float() (float64, bool) {
	if l.Value == nil {
		return 0, false
	}
	return float64(*l.Value), true
}

// EmptyResponseError signals that the model returned nothing usable.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "document model returned an empty extraction"
}

// MalformedJSONError carries a snippet of the unparseable model output.
type MalformedJSONError struct {
	Snippet string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("extraction output is not valid JSON: %s", e.Snippet)
}

// Result is the stage output: the canonical JSON text handed to the ratio
// stage plus the typed items used for local cross-checks.
type Result struct {
	Raw   string
	Items []LineItem
}

// Extractor drives the extraction prompt against a document provider.
type Extractor struct {
	Docs    llm.DocumentProvider
	Prompts *prompt.Registry
}

func NewExtractor(docs llm.DocumentProvider) *Extractor {
	return &Extractor{Docs: docs, Prompts: prompt.Get()}
}

// Extract asks the model for the line-item list of pdf. companyName and
// annualRent are echoed into the prompt so they travel with the data.
func (e *Extractor) Extract(ctx context.Context, pdf []byte, companyName string, annualRent float64) (*Result, error) {
	user, system, err := e.Prompts.Render(prompt.ExtractionLineItems, map[string]interface{}{
		"CompanyName": companyName,
		"AnnualRent":  annualRent,
	})
	if err != nil {
		return nil, err
	}

	text, err := e.Docs.GenerateFromDocument(ctx, pdf, user, system)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

// Parse salvages and decodes raw model output into a Result. Lenient parsing
// comes first so a fenced or chatty answer still yields canonical JSON; items
// the decoder cannot type (extra keys, prose rows) are dropped rather than
// failing the stage.
func Parse(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmptyResponseError{}
	}

	var rows []map[string]json.RawMessage
	canonical, err := utils.SmartParse(text, &rows)
	if err != nil {
		return nil, &MalformedJSONError{Snippet: utils.Truncate(text, 200)}
	}
	if len(rows) == 0 {
		return nil, &EmptyResponseError{}
	}

	items := make([]LineItem, 0, len(rows))
	for _, row := range rows {
		var item LineItem
		if err := decodeRow(row, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return &Result{Raw: canonical, Items: items}, nil
}

func decodeRow(row map[string]json.RawMessage, item *LineItem) error {
	raw, ok := row["intitulé"]
	if !ok {
		return fmt.Errorf("row without label")
	}
	if err := json.Unmarshal(raw, &item.Label); err != nil || item.Label == "" {
		return fmt.Errorf("bad label")
	}
	if raw, ok := row["année"]; ok {
		// Years also arrive quoted.
		s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
		if y, err := strconv.Atoi(s); err == nil {
			item.Year = y
		}
	}
	if raw, ok := row["valeur"]; ok && string(raw) != "null" {
		var a Amount
		if err := json.Unmarshal(raw, &a); err == nil {
			item.Value = &a
		}
	}
	return nil
}

// Value finds the amount for a label and year.
func (r *Result) Value(label string, year int) (float64, bool) {
	for _, item := range r.Items {
		if item.Year == year && strings.EqualFold(item.Label, label) {
			return item.Float()
		}
	}
	return 0, false
}

// Years returns the two most recent fiscal years present, most recent first.
func (r *Result) Years() (n int, nMinus1 int, ok bool) {
	seen := map[int]bool{}
	for _, item := range r.Items {
		if item.Year > 0 {
			seen[item.Year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	if len(years) < 2 {
		return 0, 0, false
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years[0], years[1], true
}
