// Package llm provides the OpenAI-compatible language-model client.
package llm

import "context"

// Request describes one chat-completion call. Model, Temperature and
// MaxTokens override the client defaults when set; SQL generation always
// passes Temperature 0 for deterministic sampling.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client defines the model collaborator interface. The engine treats it
// purely as a request/response text oracle. Use it for dependency injection
// to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion for the request.
	GenerateResponse(ctx context.Context, req Request) (string, error)

	// GetModel returns the configured default model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}
