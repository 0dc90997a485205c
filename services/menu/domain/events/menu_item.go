package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
)

// Watermill topics published by the menu repository.
const (
	TopicMenuItemCreated = "menu.item_created"
	TopicMenuItemChanged = "menu.item_changed"
)

// MenuItemCreatedEvent is published after a new MenuItem is persisted.
type MenuItemCreatedEvent struct {
	EventID      uuid.UUID   `json:"event_id"` // Unique publish-time identifier for deduplication
	Version      int         `json:"version"`  // Schema version; increment on breaking changes
	ItemID       uuid.UUID   `json:"item_id"`
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	Name         string      `json:"name"`
	Price        money.Money `json:"price"`
	Category     string      `json:"category"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// MenuItemChangedEvent is published after an item is edited, toggled or deleted.
// Deleted is true when the item no longer exists.
type MenuItemChangedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	ItemID       uuid.UUID `json:"item_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Available    bool      `json:"available"`
	Deleted      bool      `json:"deleted"`
	OccurredAt   time.Time `json:"occurred_at"`
}
