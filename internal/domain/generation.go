package domain

import "context"

// Generator is the text-generation contract (external LLM completion service).
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
