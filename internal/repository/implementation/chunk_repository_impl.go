package implementation

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/mapper"
	"news-chatter-be/internal/model"
	"news-chatter-be/internal/repository/contract"
	"news-chatter-be/internal/repository/specification"
)

type ChunkRepository struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB, chunkMapper *mapper.ChunkMapper) contract.IChunkRepository {
	return &ChunkRepository{
		db:     db,
		mapper: chunkMapper,
	}
}

type chunkWithDistance struct {
	model.Chunk
	Distance float64
}

func (r *ChunkRepository) Nearest(ctx context.Context, embedding []float32, k int, specs ...specification.Specification) ([]*entity.ChunkHit, error) {
	vector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Select("*, (embedding <=> ?) AS distance", vector)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	var rows []chunkWithDistance
	err := query.
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{vector}},
		}).
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]*entity.ChunkHit, 0, len(rows))
	for i := range rows {
		hits = append(hits, r.mapper.ToHit(&rows[i].Chunk, rows[i].Distance))
	}

	return hits, nil
}
