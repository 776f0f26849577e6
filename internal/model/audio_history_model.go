package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AudioHistory struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	QuestionText string         `gorm:"type:text"`
	PodcastText  string         `gorm:"type:text"`
	AudioURL     *string        `gorm:"type:text"`
	SourceChunks datatypes.JSON `gorm:"type:jsonb"` // passages used for the answer
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

func (AudioHistory) TableName() string {
	return "audio_history"
}
