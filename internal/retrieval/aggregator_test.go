package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/repository/specification"
	"news-chatter-be/pkg/enhance"
)

// stubEmbedder returns a one-hot vector per known text so the stub repository
// can tell queries apart.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0}, nil
}

type stubChunkRepo struct {
	byVector map[string][]*entity.ChunkHit
	err      error
}

func key(vector []float32) string {
	out := ""
	for _, v := range vector {
		if v > 0 {
			out += "1"
		} else {
			out += "0"
		}
	}
	return out
}

func (s *stubChunkRepo) Nearest(_ context.Context, vector []float32, _ int, _ ...specification.Specification) ([]*entity.ChunkHit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byVector[key(vector)], nil
}

func TestRetrieve_MergesSubQueriesInOrderAndDedupsById(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	p3 := uuid.New()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"original": {1, 0},
		"rewrite":  {0, 1},
	}}
	repo := &stubChunkRepo{byVector: map[string][]*entity.ChunkHit{
		"10": {
			hit(p1, 0.9, "https://example.com/a", nil),
			hit(p2, 0.8, "https://example.com/b", nil),
		},
		"01": {
			hit(p2, 0.85, "https://example.com/b", nil), // shared with first sub-query
			hit(p3, 0.7, "https://example.com/c", nil),
		},
	}}

	agg := NewAggregator(embedder, repo, NewRanker(3, 0), logger.NewNoopLogger(), 30, 0)
	passages, failed := agg.Retrieve(context.Background(), []enhance.SubQuery{
		{Label: "original_query", Text: "original"},
		{Label: "enhanced_query_1", Text: "rewrite"},
	}, Filters{})

	require.Empty(t, failed)
	require.Len(t, passages, 3)
	assert.Equal(t, p1, passages[0].Id)
	assert.Equal(t, p2, passages[1].Id)
	assert.Equal(t, p3, passages[2].Id)
}

func TestRetrieve_FailedSubQueryDoesNotSinkTheTurn(t *testing.T) {
	p1 := uuid.New()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"works": {1},
	}}
	repo := &stubChunkRepo{byVector: map[string][]*entity.ChunkHit{
		"1": {hit(p1, 0.9, "https://example.com/a", nil)},
		"0": nil,
	}}

	// First sub-query embeds to a key the repo fails on; the second succeeds.
	// A store error on one sub-query must leave the other intact.
	brokenRepo := &routingChunkRepo{
		good:    repo,
		failKey: "0",
	}

	agg := NewAggregator(embedder, brokenRepo, NewRanker(3, 0), logger.NewNoopLogger(), 30, 0)
	passages, failed := agg.Retrieve(context.Background(), []enhance.SubQuery{
		{Label: "original_query", Text: "breaks"},
		{Label: "enhanced_query_1", Text: "works"},
	}, Filters{})

	require.Len(t, passages, 1)
	assert.Equal(t, p1, passages[0].Id)
	assert.Equal(t, []string{"original_query"}, failed)
}

type routingChunkRepo struct {
	good    *stubChunkRepo
	failKey string
}

func (r *routingChunkRepo) Nearest(ctx context.Context, vector []float32, k int, specs ...specification.Specification) ([]*entity.ChunkHit, error) {
	if key(vector) == r.failKey {
		return nil, errors.New("store unavailable")
	}
	return r.good.Nearest(ctx, vector, k, specs...)
}

func TestRetrieve_AllSubQueriesFailing(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("embedder down")}
	agg := NewAggregator(embedder, &stubChunkRepo{}, NewRanker(3, 0), logger.NewNoopLogger(), 30, 0)

	passages, failed := agg.Retrieve(context.Background(), []enhance.SubQuery{
		{Label: "original_query", Text: "q"},
		{Label: "enhanced_query_1", Text: "r"},
	}, Filters{})

	assert.Empty(t, passages)
	assert.Equal(t, []string{"original_query", "enhanced_query_1"}, failed)
}
