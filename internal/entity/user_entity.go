package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// Preferences is the user's preference document as stored, keyed by
// preference name ("sources", "topics", "voice_preference", ...).
type Preferences map[string]string

func (p Preferences) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}
