package llm

import "context"

// IProvider is a text-in text-out language model backend.
type IProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
