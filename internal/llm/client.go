// Package llm implements the category-resolution collaborator on top of
// LLM chat APIs.
package llm

import (
	"context"
)

// Client defines the interface for LLM providers. Complete returns the raw
// text of the model's reply to a single-turn prompt.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds configuration for an LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}
