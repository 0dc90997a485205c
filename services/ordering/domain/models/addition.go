package models

import (
	"time"

	"github.com/google/uuid"
)

// KitchenAddition tells the kitchen that one line was appended to an open
// order after it was placed. Seq is assigned by storage and breaks ties
// between additions created in the same instant.
type KitchenAddition struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	OrderID      uuid.UUID
	TableNo      int
	Item         LineItem
	Status       AdditionStatus
	Seq          int64
	CreatedAt    time.Time
}

// NewAdditions builds one New addition per appended item, in item order.
func NewAdditions(o *Order, items []LineItem, now time.Time) []KitchenAddition {
	out := make([]KitchenAddition, 0, len(items))
	for _, li := range items {
		out = append(out, KitchenAddition{
			ID:           uuid.New(),
			RestaurantID: o.RestaurantID,
			OrderID:      o.ID,
			TableNo:      o.TableNo,
			Item:         li,
			Status:       AdditionNew,
			CreatedAt:    now,
		})
	}
	return out
}
