package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
)

// Watermill topics published by the ordering repository through the outbox.
const (
	TopicOrderPlaced      = "ordering.order_placed"
	TopicAdditionCreated  = "ordering.addition_created"
	TopicOrderClosed      = "ordering.order_closed"
	TopicOrderStatusMoved = "ordering.order_status_changed"
)

// EventLine is a line item as carried on events.
type EventLine struct {
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
	Qty   int         `json:"qty"`
}

// OrderPlacedEvent is published when a new order opens for a table. It is
// the kitchen's first signal for that order; no addition records exist yet.
type OrderPlacedEvent struct {
	EventID      uuid.UUID   `json:"event_id"` // Unique publish-time identifier for deduplication
	Version      int         `json:"version"`  // Schema version; increment on breaking changes
	OrderID      uuid.UUID   `json:"order_id"`
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	TableNo      int         `json:"table_no"`
	CustomerName string      `json:"customer_name,omitempty"`
	Items        []EventLine `json:"items"`
	Total        money.Money `json:"total"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// AdditionCreatedEvent is published once per item appended to an open order.
type AdditionCreatedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	AdditionID   uuid.UUID `json:"addition_id"`
	OrderID      uuid.UUID `json:"order_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	TableNo      int       `json:"table_no"`
	Item         EventLine `json:"item"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// OrderStatusChangedEvent is published when kitchen staff advance an order.
type OrderStatusChangedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	OrderID      uuid.UUID `json:"order_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// OrderClosedEvent is published exactly once per order, when billing closes it.
type OrderClosedEvent struct {
	EventID      uuid.UUID   `json:"event_id"`
	Version      int         `json:"version"`
	OrderID      uuid.UUID   `json:"order_id"`
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	TableNo      int         `json:"table_no"`
	Total        money.Money `json:"total"`
	OccurredAt   time.Time   `json:"occurred_at"`
}
