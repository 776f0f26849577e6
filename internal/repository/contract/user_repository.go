package contract

import (
	"context"

	"news-chatter-be/internal/entity"
)

type IUserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	GetPreferences(ctx context.Context, userId string) (entity.Preferences, error)
	SavePreferences(ctx context.Context, userId string, prefs entity.Preferences) error
}
