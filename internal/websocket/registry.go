package websocket

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"news-chatter-be/internal/pkg/logger"
)

const (
	presencePrefix = "chatter:presence:"
	presenceTTL    = 90 * time.Second
)

// SessionRegistry tracks which users hold an open voice session, in Redis so
// every replica sees the same picture.
type SessionRegistry struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewSessionRegistry(redisURL string, log logger.ILogger) (*SessionRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &SessionRegistry{
		rdb:    redis.NewClient(opts),
		logger: log,
	}, nil
}

func (r *SessionRegistry) Connected(ctx context.Context, userId string) {
	err := r.rdb.Set(ctx, presencePrefix+userId, time.Now().Unix(), presenceTTL).Err()
	if err != nil {
		// Presence is advisory; never block a session on Redis.
		r.logger.Warn("websocket", "failed to register presence", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
}

// Touch refreshes the presence TTL; call it on every inbound frame.
func (r *SessionRegistry) Touch(ctx context.Context, userId string) {
	_ = r.rdb.Expire(ctx, presencePrefix+userId, presenceTTL).Err()
}

func (r *SessionRegistry) Disconnected(ctx context.Context, userId string) {
	err := r.rdb.Del(ctx, presencePrefix+userId).Err()
	if err != nil {
		r.logger.Warn("websocket", "failed to clear presence", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
}

func (r *SessionRegistry) IsOnline(ctx context.Context, userId string) (bool, error) {
	n, err := r.rdb.Exists(ctx, presencePrefix+userId).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SessionRegistry) Close() error {
	return r.rdb.Close()
}
