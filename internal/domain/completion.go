package domain

import "context"

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// Completer is the LLM text completion contract. The search core uses it
// only for synonym expansion.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}
