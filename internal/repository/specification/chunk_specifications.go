package specification

import (
	"time"

	"gorm.io/gorm"
)

// BySourceType keeps only chunks scraped from one source type (exact match).
type BySourceType struct {
	Source string
}

func (s BySourceType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_type = ?", s.Source)
}

// PublishedAfter keeps chunks published at or after the bound.
type PublishedAfter struct {
	At time.Time
}

func (s PublishedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("published_at >= ?", s.At)
}

// PublishedBefore keeps chunks published at or before the bound.
type PublishedBefore struct {
	At time.Time
}

func (s PublishedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("published_at <= ?", s.At)
}
