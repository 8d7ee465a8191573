// Package ai is the question generation gateway.
//
// Generate and Explain walk a fixed chain: the configured hosted providers
// in order (Gemini, then Groq), then local content that cannot fail. A
// provider failure of any kind (transport error, non-2xx, timeout,
// unparseable or empty output) advances the chain; nothing is retried in
// place and nothing about the failure reaches the caller.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Prompt is one system+user completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int32
	// JSON asks the provider for a JSON-only response where it supports a
	// response MIME type.
	JSON bool
}

// Provider is a hosted completion API.
type Provider interface {
	// Name is a short stable id used in logs and metric labels.
	Name() string
	// Label is the human-readable model name returned to clients.
	Label() string
	// Complete returns the raw completion text.
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ErrEmptyCompletion is returned by providers that answered 2xx with no
// usable text.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// StatusError is a non-2xx answer from a provider's HTTP API.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai: %s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("ai: %s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}
