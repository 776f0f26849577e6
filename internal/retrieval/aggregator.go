package retrieval

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/repository/contract"
	"news-chatter-be/internal/repository/specification"
	"news-chatter-be/pkg/embedding"
	"news-chatter-be/pkg/enhance"
)

// Filters narrows retrieval per user preference.
type Filters struct {
	Source string
	After  *time.Time
	Before *time.Time
}

func (f Filters) specifications() []specification.Specification {
	var specs []specification.Specification
	if f.Source != "" {
		specs = append(specs, specification.BySourceType{Source: f.Source})
	}
	if f.After != nil {
		specs = append(specs, specification.PublishedAfter{At: *f.After})
	}
	if f.Before != nil {
		specs = append(specs, specification.PublishedBefore{At: *f.Before})
	}
	return specs
}

// Aggregator retrieves passages for every sub-query concurrently and merges
// the ranked results into one list.
type Aggregator struct {
	embedder embedding.IProvider
	chunks   contract.IChunkRepository
	ranker   *Ranker
	logger   logger.ILogger
	fetchK   int
	timeout  time.Duration // per sub-query deadline
}

func NewAggregator(
	embedder embedding.IProvider,
	chunks contract.IChunkRepository,
	ranker *Ranker,
	log logger.ILogger,
	fetchK int,
	timeout time.Duration,
) *Aggregator {
	if fetchK <= 0 {
		fetchK = DefaultFetchK
	}
	return &Aggregator{
		embedder: embedder,
		chunks:   chunks,
		ranker:   ranker,
		logger:   log,
		fetchK:   fetchK,
		timeout:  timeout,
	}
}

// Retrieve fans out one retrieval per sub-query. A failed sub-query
// contributes nothing and does not cancel its siblings; its label is returned
// so the caller can surface a warning. Results keep sub-query order, and a
// passage appearing under several sub-queries is kept once, at its first
// position.
func (a *Aggregator) Retrieve(ctx context.Context, subQueries []enhance.SubQuery, filters Filters) ([]*entity.RetrievedPassage, []string) {
	perQuery := make([][]*entity.RetrievedPassage, len(subQueries))
	failures := make([]string, len(subQueries))
	specs := filters.specifications()

	group := errgroup.Group{}
	for i, sq := range subQueries {
		group.Go(func() error {
			passages, err := a.retrieveOne(ctx, sq, specs)
			if err != nil {
				failures[i] = sq.Label
				a.logger.Warn("retrieval", "sub-query failed", map[string]interface{}{
					"label": sq.Label,
					"error": err.Error(),
				})
				return nil
			}
			perQuery[i] = passages
			return nil
		})
	}
	_ = group.Wait()

	merged := make([]*entity.RetrievedPassage, 0)
	seen := make(map[string]struct{})
	for _, passages := range perQuery {
		for _, p := range passages {
			if _, dup := seen[p.Id.String()]; dup {
				continue
			}
			seen[p.Id.String()] = struct{}{}
			merged = append(merged, p)
		}
	}

	var failedLabels []string
	for _, label := range failures {
		if label != "" {
			failedLabels = append(failedLabels, label)
		}
	}

	return merged, failedLabels
}

func (a *Aggregator) retrieveOne(ctx context.Context, sq enhance.SubQuery, specs []specification.Specification) ([]*entity.RetrievedPassage, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	vector, err := a.embedder.Embed(ctx, sq.Text)
	if err != nil {
		return nil, err
	}

	hits, err := a.chunks.Nearest(ctx, vector, a.fetchK, specs...)
	if err != nil {
		return nil, err
	}

	return a.ranker.Rank(hits), nil
}
