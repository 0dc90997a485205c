// Package subscribers keeps the Redis menu read model in step with menu events.
package subscribers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/logger"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	menuevents "github.com/dineqr/dineqr/services/menu/domain/events"
	"github.com/dineqr/dineqr/services/menu/domain/models"
)

// ItemReader loads a menu item through the read-through cache.
type ItemReader interface {
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error)
}

// Evicter drops a cached menu item.
type Evicter interface {
	Delete(ctx context.Context, restaurantID, itemID uuid.UUID) error
}

// CacheSync warms and evicts cached menu items. Handlers are idempotent;
// cache failures are logged and never fail the message.
type CacheSync struct {
	reader ItemReader
	cache  Evicter
	log    logger.Logger
}

// NewCacheSync returns a CacheSync.
func NewCacheSync(reader ItemReader, cache Evicter, log logger.Logger) *CacheSync {
	return &CacheSync{reader: reader, cache: cache, log: log}
}

// HandleCreated warms the cache for a newly created item.
func (s *CacheSync) HandleCreated(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[menuevents.MenuItemCreatedEvent](msg)
	if err != nil {
		return events.Permanent(err)
	}
	s.warm(ctx, evt.RestaurantID, evt.ItemID)
	return nil
}

// HandleChanged evicts the cached item and, unless it was deleted, reloads it.
func (s *CacheSync) HandleChanged(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[menuevents.MenuItemChangedEvent](msg)
	if err != nil {
		return events.Permanent(err)
	}
	if err := s.cache.Delete(ctx, evt.RestaurantID, evt.ItemID); err != nil {
		s.log.WarnContext(ctx, "menu cache evict failed", "item_id", evt.ItemID, "error", err)
		return nil
	}
	if !evt.Deleted {
		s.warm(ctx, evt.RestaurantID, evt.ItemID)
	}
	return nil
}

func (s *CacheSync) warm(ctx context.Context, restaurantID, itemID uuid.UUID) {
	_, err := s.reader.GetByID(ctx, restaurantID, itemID)
	switch {
	case err == nil:
		s.log.DebugContext(ctx, "menu cache warmed", "item_id", itemID, "restaurant_id", restaurantID)
	case errors.Is(err, menudomain.ErrMenuItemNotFound):
		// Deleted before the event was handled.
	default:
		s.log.WarnContext(ctx, "menu cache warm failed", "item_id", itemID, "error", err)
	}
}
