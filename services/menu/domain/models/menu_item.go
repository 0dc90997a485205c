package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
)

// DefaultCategory is used when an item is created without one.
const DefaultCategory = "General"

// MenuItem is the core aggregate for the menu bounded context. Orders copy
// Name and Price when an item is ordered; later edits never reach them.
type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID // tenant scope for every query
	Name         ItemName
	Price        money.Money
	Category     string
	ImageURL     string
	Available    bool
	CreatedAt    time.Time
}

// NewMenuItem constructs an available MenuItem with generated ID and current timestamp.
func NewMenuItem(restaurantID uuid.UUID, name ItemName, price money.Money, category string) (*MenuItem, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	return &MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		Category:     category,
		Available:    true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// PublicMenu is what a customer sees after scanning a table QR code.
type PublicMenu struct {
	RestaurantID   uuid.UUID
	RestaurantName string
	Items          []*MenuItem
}
