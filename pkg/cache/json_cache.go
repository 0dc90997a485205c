package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SalesSnapshotTTL keeps a daily sales snapshot until the next scheduled rebuild.
const SalesSnapshotTTL = 26 * time.Hour

// JSONCache stores values of type T as JSON strings under "{prefix}:{key}".
// Used for short-lived read models such as the kitchen feed and the daily
// sales snapshot.
type JSONCache[T any] struct {
	client *RedisClient
	prefix string
	ttl    time.Duration
}

// NewJSONCache returns a JSONCache with the given key prefix and TTL.
func NewJSONCache[T any](r *RedisClient, prefix string, ttl time.Duration) *JSONCache[T] {
	return &JSONCache[T]{client: r, prefix: prefix, ttl: ttl}
}

// Get returns the cached value. Returns redis.Nil when the key is missing or expired.
func (c *JSONCache[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	raw, err := c.client.Client().Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return v, redis.Nil
		}
		return v, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("cache decode %s: %w", c.key(key), err)
	}
	return v, nil
}

// Set stores v with the cache's TTL.
func (c *JSONCache[T]) Set(ctx context.Context, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (c *JSONCache[T]) Delete(ctx context.Context, key string) error {
	if err := c.client.Client().Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *JSONCache[T]) key(key string) string {
	return c.prefix + ":" + key
}
