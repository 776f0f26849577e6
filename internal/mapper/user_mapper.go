package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToModel(user *entity.User) *model.User {
	if user == nil {
		return nil
	}
	return &model.User{
		Id:    user.Id,
		Email: user.Email,
	}
}

// PreferencesToEntity tolerates a missing or malformed document and returns an
// empty map rather than failing the turn.
func (m *UserMapper) PreferencesToEntity(pref *model.UserPreference) entity.Preferences {
	out := entity.Preferences{}
	if pref == nil || len(pref.Values) == 0 {
		return out
	}
	if err := json.Unmarshal(pref.Values, &out); err != nil {
		return entity.Preferences{}
	}
	return out
}

func (m *UserMapper) PreferencesToModel(userId string, prefs entity.Preferences) (*model.UserPreference, error) {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}

	parsed, err := parseUUID(userId)
	if err != nil {
		return nil, err
	}

	return &model.UserPreference{
		UserId: parsed,
		Values: datatypes.JSON(raw),
	}, nil
}
