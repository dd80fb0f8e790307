package llm

import (
	"context"
	"errors"
)

// Client abstracts natural-language inference providers.
type Client interface {
	Infer(ctx context.Context, req Request) (string, error)
}

// Request captures a single inference call. The response carries no format
// guarantee; callers run it through internal/extract.
type Request struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ErrEmptyResponse is returned when the provider answers with no content.
var ErrEmptyResponse = errors.New("inference response empty")

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("inference client not configured")

// PlaceholderClient is a stub used when no provider is wired.
type PlaceholderClient struct{}

// Infer returns ErrNotConfigured.
func (PlaceholderClient) Infer(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
