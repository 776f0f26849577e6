package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk is one embedded excerpt of a scraped article. Rows are written by the
// ingestion batch job; this service only reads them.
type Chunk struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content     string          `gorm:"type:text"`
	Title       string          `gorm:"type:text"`
	SourceLink  string          `gorm:"type:text"` // article URL
	SourceType  string          `gorm:"type:varchar(64);index"`
	PublishedAt *time.Time      `gorm:"index"`
	Embedding   pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 uses 768 dimensions
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "chunks_vector"
}
