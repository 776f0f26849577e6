package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkHit is a raw nearest-neighbour row from the chunk store, before any
// recency weighting or document-level dedup is applied.
type ChunkHit struct {
	Id          uuid.UUID
	Content     string
	Title       string
	SourceURL   string
	SourceType  string
	PublishedAt *time.Time
	Similarity  float64 // 1 - cosine distance
}

// RetrievedPassage is a ranked hit as handed to the generation stage.
type RetrievedPassage struct {
	Id            uuid.UUID
	Text          string
	Title         string
	SourceURL     string
	DocumentKey   string
	Similarity    float64
	RecencyWeight float64
	AdjustedScore float64
	PublishedAt   *time.Time
}
