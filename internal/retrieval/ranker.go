package retrieval

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"time"

	"news-chatter-be/internal/entity"
)

const (
	// DefaultFetchK is how many nearest chunks are pulled per sub-query
	// before document-level dedup.
	DefaultFetchK = 30
	// DefaultDocsK is how many passages survive dedup per sub-query.
	DefaultDocsK = 3
)

// Ranker applies recency weighting to raw chunk hits and collapses them to at
// most docsK passages, keeping a single best passage per source document.
type Ranker struct {
	docsK  int
	lambda float64 // per-day decay; 0 disables recency weighting
	now    func() time.Time
}

func NewRanker(docsK int, lambda float64) *Ranker {
	if docsK <= 0 {
		docsK = DefaultDocsK
	}
	return &Ranker{
		docsK:  docsK,
		lambda: lambda,
		now:    time.Now,
	}
}

// Rank walks hits in the store's returned order (nearest-first), keeping the
// first passage seen per document until docsK are kept. The recency weight
// only adjusts the score each passage carries; it never changes the walk
// order or which chunk represents a document.
func (r *Ranker) Rank(hits []*entity.ChunkHit) []*entity.RetrievedPassage {
	kept := make([]*entity.RetrievedPassage, 0, r.docsK)
	seen := make(map[string]struct{}, r.docsK)
	for _, hit := range hits {
		key := documentKey(hit)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		weight := r.recencyWeight(hit.PublishedAt)
		kept = append(kept, &entity.RetrievedPassage{
			Id:            hit.Id,
			Text:          hit.Content,
			Title:         hit.Title,
			SourceURL:     hit.SourceURL,
			DocumentKey:   key,
			Similarity:    hit.Similarity,
			RecencyWeight: weight,
			AdjustedScore: hit.Similarity * weight,
			PublishedAt:   hit.PublishedAt,
		})
		if len(kept) == r.docsK {
			break
		}
	}

	return kept
}

func (r *Ranker) recencyWeight(publishedAt *time.Time) float64 {
	if r.lambda <= 0 || publishedAt == nil {
		return 1.0
	}

	ageDays := r.now().Sub(*publishedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-r.lambda * ageDays)
}

// documentKey identifies the source article a chunk came from. Chunks without
// a URL each get their own key so they are never collapsed together.
func documentKey(hit *entity.ChunkHit) string {
	if hit.SourceURL == "" {
		return "id:" + hit.Id.String()
	}
	sum := md5.Sum([]byte(hit.SourceURL))
	return hex.EncodeToString(sum[:])
}
