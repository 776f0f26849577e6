package entity

import (
	"time"

	"github.com/google/uuid"
)

// TurnRecord is one completed voice turn: the transcribed question, the
// generated podcast script, and the passages it was grounded on.
type TurnRecord struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	QuestionText string
	PodcastText  string
	AudioURL     *string
	Sources      []TurnSource
	CreatedAt    time.Time
}

// TurnSource is the persisted summary of one passage used for a turn.
type TurnSource struct {
	Title       string     `json:"title"`
	SourceURL   string     `json:"source_url"`
	Similarity  float64    `json:"similarity"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
