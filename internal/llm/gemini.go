package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey      string
	Temperature float64
}

type GeminiGenerator struct {
	client      *genai.Client
	temperature float64
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, temperature: cfg.Temperature}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (any, error) {
	generative := g.client.GenerativeModel(model)
	if g.temperature > 0 {
		generative.SetTemperature(float32(g.temperature))
	}
	resp, err := generative.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	return GeminiResponse{Raw: resp}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// GeminiResponse exposes the concatenated text parts of the first
// candidate.
type GeminiResponse struct {
	Raw *genai.GenerateContentResponse
}

func (r GeminiResponse) Text() string {
	if r.Raw == nil || len(r.Raw.Candidates) == 0 {
		return ""
	}
	content := r.Raw.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func (r GeminiResponse) String() string {
	if r.Raw == nil {
		return ""
	}
	if r.Raw.PromptFeedback != nil && r.Raw.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "prompt blocked: " + r.Raw.PromptFeedback.BlockReason.String()
	}
	return fmt.Sprintf("%+v", *r.Raw)
}
