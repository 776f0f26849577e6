package mapper

import (
	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/model"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

// ToHit maps a chunk row plus its query-time cosine distance into a hit.
func (m *ChunkMapper) ToHit(chunk *model.Chunk, distance float64) *entity.ChunkHit {
	if chunk == nil {
		return nil
	}
	return &entity.ChunkHit{
		Id:          chunk.Id,
		Content:     chunk.Content,
		Title:       chunk.Title,
		SourceURL:   chunk.SourceLink,
		SourceType:  chunk.SourceType,
		PublishedAt: chunk.PublishedAt,
		Similarity:  1 - distance,
	}
}
