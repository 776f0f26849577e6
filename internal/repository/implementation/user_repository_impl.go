package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/mapper"
	"news-chatter-be/internal/model"
	"news-chatter-be/internal/repository/contract"
)

type UserRepository struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB, userMapper *mapper.UserMapper) contract.IUserRepository {
	return &UserRepository{
		db:     db,
		mapper: userMapper,
	}
}

func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	row := r.mapper.ToModel(user)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email"}),
		}).
		Create(row).Error
}

func (r *UserRepository) GetPreferences(ctx context.Context, userId string) (entity.Preferences, error) {
	var pref model.UserPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Preferences{}, nil
		}
		return nil, err
	}
	return r.mapper.PreferencesToEntity(&pref), nil
}

func (r *UserRepository) SavePreferences(ctx context.Context, userId string, prefs entity.Preferences) error {
	row, err := r.mapper.PreferencesToModel(userId, prefs)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"values", "updated_at"}),
		}).
		Create(row).Error
}
