package llm

import "context"

// CompletionRequest represents a request for a model completion.
type CompletionRequest struct {
	// Messages contains the conversation to complete.
	Messages []Message

	// Temperature controls randomness in the output (0.0 to 2.0).
	Temperature *float64

	// MaxTokens limits the maximum number of tokens to generate.
	MaxTokens *int
}

// CompletionResponse represents a response from a model completion.
type CompletionResponse struct {
	// Content is the generated text content.
	Content string

	// FinishReason indicates why the generation stopped.
	// Common values: "stop", "length", "content_filter"
	FinishReason string

	// Usage contains token usage statistics.
	Usage TokenUsage
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	// InputTokens is the number of tokens in the input/prompt.
	InputTokens int

	// OutputTokens is the number of tokens generated in the response.
	OutputTokens int

	// TotalTokens is the sum of input and output tokens.
	TotalTokens int
}

// CompletionOption is a functional option for configuring CompletionRequest.
type CompletionOption func(*CompletionRequest)

// WithTemperature sets the temperature for the completion request.
func WithTemperature(t float64) CompletionOption {
	return func(r *CompletionRequest) {
		r.Temperature = &t
	}
}

// WithMaxTokens sets the output token ceiling for the completion request.
func WithMaxTokens(n int) CompletionOption {
	return func(r *CompletionRequest) {
		r.MaxTokens = &n
	}
}

// Client is the interface a completion provider must satisfy. The infer
// package holds a Client only when one was configured; a nil Client is the
// normal state and every caller must tolerate it.
type Client interface {
	// Complete performs a single completion request.
	Complete(ctx context.Context, messages []Message, opts ...CompletionOption) (*CompletionResponse, error)
}
