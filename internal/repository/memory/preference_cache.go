package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"news-chatter-be/internal/entity"
)

// PreferenceCache keeps per-user preference documents in process memory so a
// reconnecting client does not hit the database on every turn.
type PreferenceCache struct {
	store *gocache.Cache
}

func NewPreferenceCache(ttl time.Duration) *PreferenceCache {
	return &PreferenceCache{
		store: gocache.New(ttl, 2*ttl),
	}
}

func (c *PreferenceCache) Get(userId string) (entity.Preferences, bool) {
	raw, found := c.store.Get(userId)
	if !found {
		return nil, false
	}
	prefs, ok := raw.(entity.Preferences)
	return prefs, ok
}

func (c *PreferenceCache) Set(userId string, prefs entity.Preferences) {
	c.store.SetDefault(userId, prefs)
}

func (c *PreferenceCache) Invalidate(userId string) {
	c.store.Delete(userId)
}
