package roles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "roles:all"

// Cache stores the role list in Redis. A nil Cache or client disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached list; ok is false on a miss.
func (c *Cache) Get(ctx context.Context) ([]Role, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var list []Role
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// Set stores the list with the configured TTL.
func (c *Cache) Set(ctx context.Context, list []Role) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached list.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey).Err()
}
