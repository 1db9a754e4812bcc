package ai

import "context"

// CompletionRequest describes a single stateless completion exchange.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSONMode asks the provider to constrain output to a JSON object when
	// the underlying API supports it. Callers must still parse strictly.
	JSONMode bool
}

// Client describes a stateless language model completion service.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
