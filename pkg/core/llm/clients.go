package llm

import "context"

// Settings carries the provider wiring read from configuration and the
// environment.
type Settings struct {
	GeminiAPIKey    string
	AnthropicAPIKey string
	GeminiModel     string
	ClaudeModel     string
	ExtractionMode  string // ModeInline or ModeUpload
	ThinkingBudget  int32
}

// Clients bundles the three provider roles the pipeline needs. Extraction and
// search share one Gemini client; ratio computation and synthesis share one
// Claude client.
type Clients struct {
	Document DocumentProvider
	Analysis AnalysisProvider
	Search   SearchProvider
}

// NewClients builds all providers up front so misconfiguration fails at
// startup rather than on the first request.
func NewClients(ctx context.Context, s Settings) (*Clients, error) {
	gemini, err := NewGeminiProvider(ctx, s.GeminiAPIKey, s.GeminiModel, s.ExtractionMode)
	if err != nil {
		return nil, err
	}
	if s.ThinkingBudget > 0 {
		gemini.ThinkingBudget = s.ThinkingBudget
	}

	claude, err := NewClaudeProvider(s.AnthropicAPIKey, s.ClaudeModel)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Document: gemini,
		Analysis: claude,
		Search:   gemini,
	}, nil
}
