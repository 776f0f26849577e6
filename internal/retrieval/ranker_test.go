package retrieval

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-chatter-be/internal/entity"
)

func hit(id uuid.UUID, similarity float64, sourceURL string, publishedAt *time.Time) *entity.ChunkHit {
	return &entity.ChunkHit{
		Id:          id,
		Content:     "passage " + id.String()[:8],
		Title:       "title",
		SourceURL:   sourceURL,
		PublishedAt: publishedAt,
		Similarity:  similarity,
	}
}

func TestRank_DocumentDedupKeepsBestPerArticle(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	p3 := uuid.New()

	hits := []*entity.ChunkHit{
		hit(p1, 0.95, "https://example.com/a", nil),
		hit(p2, 0.90, "https://example.com/a", nil), // same article as p1
		hit(p3, 0.80, "https://example.com/b", nil),
	}

	ranker := NewRanker(2, 0)
	kept := ranker.Rank(hits)

	require.Len(t, kept, 2)
	assert.Equal(t, p1, kept[0].Id)
	assert.Equal(t, p3, kept[1].Id)
}

func TestRank_LambdaZeroLeavesSimilarityUntouched(t *testing.T) {
	old := time.Now().AddDate(-1, 0, 0)
	hits := []*entity.ChunkHit{
		hit(uuid.New(), 0.72, "https://example.com/a", &old),
	}

	kept := NewRanker(3, 0).Rank(hits)

	require.Len(t, kept, 1)
	assert.Equal(t, 1.0, kept[0].RecencyWeight)
	assert.Equal(t, 0.72, kept[0].AdjustedScore)
	assert.Equal(t, kept[0].Similarity, kept[0].AdjustedScore)
}

func TestRank_KeepsStoreOrderUnderRecencyWeighting(t *testing.T) {
	now := time.Now()
	stale := now.AddDate(0, 0, -30)
	fresh := now.AddDate(0, 0, -1)

	older := uuid.New()
	newer := uuid.New()
	hits := []*entity.ChunkHit{
		hit(older, 0.90, "https://example.com/old", &stale),
		hit(newer, 0.70, "https://example.com/new", &fresh),
	}

	ranker := NewRanker(2, 0.1)
	ranker.now = func() time.Time { return now }
	kept := ranker.Rank(hits)

	require.Len(t, kept, 2)
	// Output stays nearest-first even though the fresher passage carries the
	// higher adjusted score; the weight only travels on the passage.
	assert.Equal(t, older, kept[0].Id)
	assert.Equal(t, newer, kept[1].Id)
	assert.Less(t, kept[0].AdjustedScore, kept[1].AdjustedScore)
	assert.InDelta(t, 0.90*math.Exp(-0.1*30), kept[0].AdjustedScore, 1e-9)
	assert.InDelta(t, 0.70*math.Exp(-0.1*1), kept[1].AdjustedScore, 1e-9)
}

func TestRank_RecencyNeverChangesWhichChunkRepresentsADocument(t *testing.T) {
	now := time.Now()
	stale := now.AddDate(0, 0, -30)
	fresh := now.AddDate(0, 0, -1)

	c1 := uuid.New()
	c2 := uuid.New()
	c3 := uuid.New()
	hits := []*entity.ChunkHit{
		hit(c1, 0.90, "https://example.com/x", &stale), // store-order-first for doc X
		hit(c2, 0.80, "https://example.com/x", &fresh), // fresher, higher adjusted score
		hit(c3, 0.70, "https://example.com/y", nil),
	}

	ranker := NewRanker(2, 0.1)
	ranker.now = func() time.Time { return now }
	kept := ranker.Rank(hits)

	require.Len(t, kept, 2)
	assert.Equal(t, c1, kept[0].Id)
	assert.Equal(t, c3, kept[1].Id)
}

func TestRank_MissingPublishedAtGetsFullWeight(t *testing.T) {
	ranker := NewRanker(3, 0.5)
	kept := ranker.Rank([]*entity.ChunkHit{hit(uuid.New(), 0.6, "https://example.com/a", nil)})

	require.Len(t, kept, 1)
	assert.Equal(t, 1.0, kept[0].RecencyWeight)
}

func TestRank_ChunksWithoutURLAreNeverCollapsed(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	hits := []*entity.ChunkHit{
		hit(a, 0.9, "", nil),
		hit(b, 0.8, "", nil),
	}

	kept := NewRanker(3, 0).Rank(hits)

	require.Len(t, kept, 2)
	assert.NotEqual(t, kept[0].DocumentKey, kept[1].DocumentKey)
}

func TestRank_FutureDatedChunkClampsToFullWeight(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	kept := NewRanker(3, 0.2).Rank([]*entity.ChunkHit{hit(uuid.New(), 0.5, "https://example.com/a", &future)})

	require.Len(t, kept, 1)
	assert.Equal(t, 1.0, kept[0].RecencyWeight)
}
