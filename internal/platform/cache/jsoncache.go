package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache wraps Redis based caching of JSON encoded values. A nil client
// degrades to pass-through loading so call sites never need to branch.
type JSONCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJSONCache instantiates the cache helper.
func NewJSONCache(client *redis.Client, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, ttl: ttl}
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *JSONCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(raw, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}

// Invalidate removes cached entries by exact key.
func (c *JSONCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
