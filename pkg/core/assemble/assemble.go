// Package assemble builds the response envelope returned to clients: the
// validated synthesis document wrapped in a status envelope, with the
// canonical source descriptors injected last so they can never be spoofed by
// model output.
package assemble

import (
	"encoding/json"
	"fmt"

	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/utils"
)

// SourceDescriptor identifies one document or web source behind the analysis.
type SourceDescriptor struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// Categories used by the canonical descriptors.
const (
	CategoryCompanyData = "Company data"
	CategoryNews        = "News"
)

// PDFSource is the descriptor of the analyzed accounts document.
func PDFSource(pdfURL string) SourceDescriptor {
	return SourceDescriptor{Name: "PDF Document", URL: pdfURL, Category: CategoryCompanyData}
}

// CitationSources converts search-grounding citations into descriptors.
func CitationSources(citations []llm.Citation) []SourceDescriptor {
	out := make([]SourceDescriptor, 0, len(citations))
	for _, c := range citations {
		name := c.Title
		if name == "" {
			name = c.URL
		}
		out = append(out, SourceDescriptor{Name: name, URL: c.URL, Category: CategoryNews})
	}
	return out
}

// CanonicalSources is the final source list: the PDF descriptor first, then
// any grounded citations.
func CanonicalSources(pdfURL string, citations []llm.Citation) []SourceDescriptor {
	return append([]SourceDescriptor{PDFSource(pdfURL)}, CitationSources(citations)...)
}

// Success wraps doc in the success envelope. Whatever "sources" the model
// emitted is discarded and replaced by the canonical list.
func Success(doc map[string]interface{}, sources []SourceDescriptor) map[string]interface{} {
	doc["sources"] = sources
	return map[string]interface{}{
		"status": "success",
		"data":   doc,
	}
}

// Error builds the expected-failure envelope. These ship with HTTP 200: the
// request was handled, the analysis could not be produced.
func Error(message string, details interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"status":  "error",
		"message": message,
	}
	if details != nil {
		out["details"] = details
	}
	return out
}

// FromRaw decodes salvageable JSON text into a document map.
func FromRaw(raw string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if _, err := utils.SmartParse(raw, &doc); err != nil {
		return nil, fmt.Errorf("assembling response: %w", err)
	}
	return doc, nil
}

// Marshal renders the envelope as the final response body.
func Marshal(envelope map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshaling response envelope: %w", err)
	}
	return body, nil
}
