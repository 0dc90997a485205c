// Package cache holds the Redis-backed read models and locks: the menu item
// cache, JSON snapshots (kitchen feed, daily sales) and the per-table lock
// that serialises order placement.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dineqr/dineqr/pkg/config"
)

const (
	defaultPoolSize = 20
	connectTimeout  = 2 * time.Second
)

// RedisClient owns the process-wide connection pool.
type RedisClient struct {
	client *redis.Client
}

// clientOptions parses REDIS_URL and applies pool limits. Command timeouts
// stay short so a slow Redis degrades caching instead of stalling requests.
func clientOptions(cfg *config.Config) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.RedisPoolSize
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	opts.MinIdleConns = opts.PoolSize / 10
	opts.MaxRetries = 2
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.PoolTimeout = 2 * time.Second
	return opts, nil
}

// NewRedisClient connects and pings once; an unreachable server is an error.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return &RedisClient{client: rdb}, nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client exposes the pool for stores that need raw commands, such as the
// session store.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
