package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGroqModel    = "llama-3.3-70b-versatile"

	// maxErrorBody caps how much of a failed response is read for the
	// error message.
	maxErrorBody = 4 << 10
)

// Groq calls Groq's OpenAI-compatible chat completions endpoint.
type Groq struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string
}

var _ Provider = (*Groq)(nil)

// NewGroq creates a Groq provider. An empty model or endpoint uses the
// default; tests point endpoint at an httptest server.
func NewGroq(httpClient *http.Client, apiKey, model, endpoint string) *Groq {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if model == "" {
		model = DefaultGroqModel
	}
	if endpoint == "" {
		endpoint = DefaultGroqEndpoint
	}
	return &Groq{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Label() string {
	if g.model == DefaultGroqModel {
		return "Meta Llama 3.3 70B (via Groq)"
	}
	return g.model + " (via Groq)"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete posts one chat completion and returns the first choice's text.
func (g *Groq) Complete(ctx context.Context, p Prompt) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: p.User})

	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encoding groq request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: building groq request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: groq request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		var apiErr apiErrorBody
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", &StatusError{Provider: g.Name(), StatusCode: resp.StatusCode, Message: msg}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai: decoding groq response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
