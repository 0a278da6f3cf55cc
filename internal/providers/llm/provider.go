// Package llm holds the chat-completion provider used by the AI modules.
package llm

import "context"

// Completion is the provider output for one generation.
type Completion struct {
	Content string
	Tokens  int
}

// Completer produces a completion from a system and user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (Completion, error)
}
