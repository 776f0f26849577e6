package embedding

import "context"

// IProvider turns text into a dense vector suitable for the chunk store.
type IProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
