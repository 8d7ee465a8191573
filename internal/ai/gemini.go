package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash-latest"

// Gemini calls Google's Generative Language API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Provider = (*Gemini)(nil)

// NewGemini creates a client for apiKey. The caller owns Close.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: gemini api key is empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Label() string { return "Google Gemini (" + g.model + ")" }

// Complete sends p as a single-turn request.
func (g *Gemini) Complete(ctx context.Context, p Prompt) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if p.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(p.System)},
		}
	}

	temp := p.Temperature
	maxTokens := p.MaxTokens
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}
	if p.JSON {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", fmt.Errorf("ai: gemini generate content: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying gRPC connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", fmt.Errorf("%w (finish reason %s)", ErrEmptyCompletion, c.FinishReason)
	}

	var b strings.Builder
	for _, part := range c.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
