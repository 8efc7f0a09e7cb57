package ai

import (
	"context"
	"errors"
)

// ErrNoCredential is returned by callers that require a Completer and were
// handed nil.
var ErrNoCredential = errors.New("no AI credential configured")

// ChatRequest is one system+user exchange. Zero Temperature or MaxTokens
// means the provider default.
type ChatRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks providers that support it for a JSON-only reply.
	JSON bool
}

// Completer sends a chat completion and returns the raw assistant text.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req ChatRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}
