// Package llm wraps the model providers behind small, stage-shaped
// interfaces: document understanding (Gemini), text analysis (Claude) and
// search-grounded briefing (Gemini with Google Search). The pipeline depends
// only on these interfaces so tests can swap in canned providers.
package llm

import "context"

// Citation is one grounded web source attached to a search answer.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DocumentProvider answers a prompt about an attached PDF document.
type DocumentProvider interface {
	GenerateFromDocument(ctx context.Context, pdf []byte, prompt string, system string) (string, error)
}

// AnalysisProvider answers a pure-text prompt.
type AnalysisProvider interface {
	GenerateAnalysis(ctx context.Context, prompt string, system string) (string, error)
}

// SearchProvider answers a prompt with live web grounding and returns the
// citations the answer was grounded on.
type SearchProvider interface {
	SearchGrounded(ctx context.Context, prompt string) (string, []Citation, error)
}
