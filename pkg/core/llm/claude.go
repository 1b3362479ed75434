package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultClaudeModel     = "claude-sonnet-4-20250514"
	defaultClaudeMaxTokens = int64(20000)
)

// ClaudeProvider implements AnalysisProvider on the Anthropic SDK. It serves
// both the ratio computation and the synthesis stage.
type ClaudeProvider struct {
	client      anthropic.Client
	Model       anthropic.Model
	MaxTokens   int64
	Temperature float64
}

var _ AnalysisProvider = (*ClaudeProvider)(nil)

// NewClaudeProvider builds a provider for the given model.
func NewClaudeProvider(apiKey, model string) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key not set")
	}
	if model == "" {
		model = defaultClaudeModel
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &ClaudeProvider{
		client:      client,
		Model:       anthropic.Model(model),
		MaxTokens:   defaultClaudeMaxTokens,
		Temperature: 0.1,
	}, nil
}

// GenerateAnalysis sends a single-turn message and concatenates the text
// blocks of the reply.
func (p *ClaudeProvider) GenerateAnalysis(ctx context.Context, prompt string, system string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     p.Model,
		MaxTokens: p.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.Temperature > 0 {
		params.Temperature = anthropic.Float(p.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("claude returned no text content")
	}
	return out.String(), nil
}
