// Package llm provides the text-completion collaborator used by the
// LLM-assisted TableSpec compiler. Providers are interchangeable behind
// TextCompleter; any provider failure is classified, catchable, and
// must never crash the compiler.
package llm

import (
	"context"
)

// CompletionRequest is a single prompt sent to a completion provider.
type CompletionRequest struct {
	Prompt      string
	System      string
	Model       string // empty means the client's configured model
	MaxTokens   int    // 0 means provider default
	Temperature float64
}

// CompletionResult holds the provider's text output and usage stats.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TextCompleter is the external text-completion collaborator. Use this
// interface for dependency injection to enable mocking in tests.
type TextCompleter interface {
	// Complete generates a text completion for the request.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// Model returns the configured model name.
	Model() string
}

// Ensure both providers implement TextCompleter at compile time.
var (
	_ TextCompleter = (*OpenAIClient)(nil)
	_ TextCompleter = (*AnthropicClient)(nil)
)
