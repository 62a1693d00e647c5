package settings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const activeCacheKey = "settings:active"

// Cache keeps the resolved active settings record in Redis so the checkout
// read path does not hit Postgres on every computation.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

// GetActive reports whether a cached copy existed and decodes it into out.
func (c *Cache) GetActive(ctx context.Context, out *Settings) (bool, error) {
	if c == nil || c.Client == nil {
		return false, nil
	}
	data, err := c.Client.Get(ctx, activeCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetActive stores the active settings with the configured TTL.
func (c *Cache) SetActive(ctx context.Context, in Settings) error {
	if c == nil || c.Client == nil {
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, activeCacheKey, data, c.TTL).Err()
}

// Invalidate drops the cached active settings after a write.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, activeCacheKey).Err()
}
