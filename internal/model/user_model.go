package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"` // issued by the external identity provider
	Email     string    `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// UserPreference holds one JSON document of preference key/values per user
// (topics, sources, voice_preference, ...).
type UserPreference struct {
	UserId    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Values    datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
