package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// MenuItemCacheTTL is the time-to-live for cached menu items.
	MenuItemCacheTTL = 24 * time.Hour

	menuItemCacheKeyPrefix = "menu_item"
)

// CachedMenuItem is the denormalized read model stored in Redis.
// Price is kept in paise.
type CachedMenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Price        int64
	Category     string
	ImageURL     string
	Available    bool
	CreatedAt    time.Time
}

// MenuItemCache provides structured read/write operations for menu item entries.
// Keys are scoped by restaurantID to prevent cross-tenant data leakage.
// Key format: "menu_item:{restaurantID}:{itemID}"
type MenuItemCache struct {
	client *RedisClient
}

// NewMenuItemCache creates a new MenuItemCache backed by the given RedisClient.
func NewMenuItemCache(r *RedisClient) *MenuItemCache {
	return &MenuItemCache{client: r}
}

// Get retrieves a cached menu item.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *MenuItemCache) Get(ctx context.Context, restaurantID, itemID uuid.UUID) (*CachedMenuItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(restaurantID, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	rid, err := uuid.Parse(vals["restaurant_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse restaurant_id: %w", err)
	}
	price, err := strconv.ParseInt(vals["price"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse price: %w", err)
	}
	available, err := strconv.ParseBool(vals["available"])
	if err != nil {
		return nil, fmt.Errorf("cache parse available: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}

	return &CachedMenuItem{
		ID:           id,
		RestaurantID: rid,
		Name:         vals["name"],
		Price:        price,
		Category:     vals["category"],
		ImageURL:     vals["image_url"],
		Available:    available,
		CreatedAt:    createdAt,
	}, nil
}

// Set writes a menu item as a Redis hash with MenuItemCacheTTL.
func (c *MenuItemCache) Set(ctx context.Context, item *CachedMenuItem) error {
	key := c.key(item.RestaurantID, item.ID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"id", item.ID.String(),
		"restaurant_id", item.RestaurantID.String(),
		"name", item.Name,
		"price", strconv.FormatInt(item.Price, 10),
		"category", item.Category,
		"image_url", item.ImageURL,
		"available", strconv.FormatBool(item.Available),
		"created_at", item.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, MenuItemCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached menu item.
func (c *MenuItemCache) Delete(ctx context.Context, restaurantID, itemID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(restaurantID, itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *MenuItemCache) key(restaurantID, itemID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", menuItemCacheKeyPrefix, restaurantID, itemID)
}
