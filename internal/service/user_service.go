package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/repository/contract"
	"news-chatter-be/internal/repository/memory"
	"news-chatter-be/internal/retrieval"
)

// Preference keys the retrieval pipeline understands. Unknown keys are stored
// but ignored here.
const (
	prefKeySource     = "preferred_source"
	prefKeyMaxAgeDays = "max_age_days"
)

type IUserService interface {
	EnsureUser(ctx context.Context, userId, email string) error
	GetPreferences(ctx context.Context, userId string) (entity.Preferences, error)
	UpdatePreferences(ctx context.Context, userId string, prefs entity.Preferences) error
	FiltersFor(ctx context.Context, userId string) (retrieval.Filters, error)
	History(ctx context.Context, userId string, limit int) ([]*entity.TurnRecord, error)
}

type UserService struct {
	users   contract.IUserRepository
	history contract.IHistoryRepository
	cache   *memory.PreferenceCache
	logger  logger.ILogger
}

func NewUserService(
	users contract.IUserRepository,
	history contract.IHistoryRepository,
	cache *memory.PreferenceCache,
	log logger.ILogger,
) IUserService {
	return &UserService{
		users:   users,
		history: history,
		cache:   cache,
		logger:  log,
	}
}

// EnsureUser records the identity after the external provider registers it.
// Safe to call on every login.
func (s *UserService) EnsureUser(ctx context.Context, userId, email string) error {
	id, err := uuid.Parse(userId)
	if err != nil {
		return err
	}
	return s.users.Upsert(ctx, &entity.User{Id: id, Email: email})
}

func (s *UserService) GetPreferences(ctx context.Context, userId string) (entity.Preferences, error) {
	if prefs, hit := s.cache.Get(userId); hit {
		return prefs, nil
	}

	prefs, err := s.users.GetPreferences(ctx, userId)
	if err != nil {
		return nil, err
	}

	s.cache.Set(userId, prefs)
	return prefs, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, userId string, prefs entity.Preferences) error {
	if err := s.users.SavePreferences(ctx, userId, prefs); err != nil {
		return err
	}
	s.cache.Invalidate(userId)
	return nil
}

// FiltersFor translates the stored preference document into retrieval
// filters: preferred_source narrows to one source type, max_age_days sets a
// published-after bound.
func (s *UserService) FiltersFor(ctx context.Context, userId string) (retrieval.Filters, error) {
	prefs, err := s.GetPreferences(ctx, userId)
	if err != nil {
		return retrieval.Filters{}, err
	}

	filters := retrieval.Filters{Source: prefs.Get(prefKeySource)}

	if raw := prefs.Get(prefKeyMaxAgeDays); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			s.logger.Warn("user", "ignoring invalid max_age_days preference", map[string]interface{}{
				"user_id": userId,
				"value":   raw,
			})
		} else {
			after := time.Now().AddDate(0, 0, -days)
			filters.After = &after
		}
	}

	return filters, nil
}

func (s *UserService) History(ctx context.Context, userId string, limit int) ([]*entity.TurnRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.history.ListByUser(ctx, userId, limit)
}
