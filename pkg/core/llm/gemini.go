package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"financial_insights/pkg/core/retry"
)

// Document attachment modes. Inline sends the PDF bytes with the request;
// upload stages the file through the Files API first, which is required for
// documents above the inline request limit.
const (
	ModeInline = "inline"
	ModeUpload = "upload"
)

const (
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultThinkingBudget = int32(8000)
	uploadPollInterval    = 2 * time.Second
	uploadPollTimeout     = 2 * time.Minute
)

// GeminiProvider implements DocumentProvider and SearchProvider on the
// official GenAI SDK.
type GeminiProvider struct {
	client         *genai.Client
	Model          string
	Mode           string // ModeInline or ModeUpload
	ThinkingBudget int32
}

var _ DocumentProvider = (*GeminiProvider)(nil)
var _ SearchProvider = (*GeminiProvider)(nil)

// NewGeminiProvider builds a provider against the Gemini API backend.
func NewGeminiProvider(ctx context.Context, apiKey, model, mode string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if mode == "" {
		mode = ModeInline
	}
	return &GeminiProvider{
		client:         client,
		Model:          model,
		Mode:           mode,
		ThinkingBudget: defaultThinkingBudget,
	}, nil
}

// GenerateFromDocument sends prompt plus the PDF to the model and returns the
// raw text answer. JSON mode is always on: every document prompt in the
// registry demands structured output.
func (p *GeminiProvider) GenerateFromDocument(ctx context.Context, pdf []byte, prompt string, system string) (string, error) {
	part, err := p.documentPart(ctx, pdf)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(p.thinkingBudget()),
		},
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{part, genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := p.client.Models.GenerateContent(ctx, p.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini document generation failed: %w", err)
	}
	return result.Text(), nil
}

// documentPart attaches the PDF either inline or through the Files API.
func (p *GeminiProvider) documentPart(ctx context.Context, pdf []byte) (*genai.Part, error) {
	if p.Mode != ModeUpload {
		return genai.NewPartFromBytes(pdf, "application/pdf"), nil
	}

	file, err := p.client.Files.Upload(ctx, bytes.NewReader(pdf), &genai.UploadFileConfig{
		MIMEType: "application/pdf",
	})
	if err != nil {
		return nil, fmt.Errorf("file upload failed: %w", err)
	}

	// Uploaded files are processed asynchronously; wait for ACTIVE.
	err = retry.PollUntil(ctx, uploadPollInterval, uploadPollTimeout, func(ctx context.Context) (bool, error) {
		file, err = p.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return false, fmt.Errorf("file status check failed: %w", err)
		}
		switch file.State {
		case genai.FileStateActive:
			return true, nil
		case genai.FileStateFailed:
			return false, fmt.Errorf("file processing failed for %s", file.Name)
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return genai.NewPartFromURI(file.URI, "application/pdf"), nil
}

// SearchGrounded runs the prompt with Google Search grounding enabled and
// collects the web citations from the grounding metadata.
func (p *GeminiProvider) SearchGrounded(ctx context.Context, prompt string) (string, []Citation, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		Tools: []*genai.Tool{
			{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.Model, genai.Text(prompt), config)
	if err != nil {
		return "", nil, fmt.Errorf("gemini search generation failed: %w", err)
	}

	text := result.Text()
	var citations []Citation
	if len(result.Candidates) > 0 {
		cand := result.Candidates[0]
		if cand.GroundingMetadata != nil {
			for _, chunk := range cand.GroundingMetadata.GroundingChunks {
				if chunk.Web != nil && chunk.Web.URI != "" {
					citations = append(citations, Citation{
						Title: strings.TrimSpace(chunk.Web.Title),
						URL:   chunk.Web.URI,
					})
				}
			}
		}
	}
	return text, citations, nil
}

func (p *GeminiProvider) thinkingBudget() int32 {
	if p.ThinkingBudget > 0 {
		return p.ThinkingBudget
	}
	return defaultThinkingBudget
}
