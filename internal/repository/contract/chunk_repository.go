package contract

import (
	"context"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/repository/specification"
)

// IChunkRepository reads the pgvector chunk store.
type IChunkRepository interface {
	// Nearest returns up to k chunks ordered by ascending cosine distance to
	// the query embedding, with similarity already computed per hit.
	Nearest(ctx context.Context, embedding []float32, k int, specs ...specification.Specification) ([]*entity.ChunkHit, error)
}
