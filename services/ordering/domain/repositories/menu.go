package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
)

// MenuEntry is the part of a menu item that ordering copies into an order.
type MenuEntry struct {
	Name      string
	Price     money.Money
	Available bool
}

// MenuLookup resolves menu items for the admin add-item path. Implementations
// return domain.ErrMenuItemNotFound for unknown ids or other tenants' items.
type MenuLookup interface {
	LookupMenuItem(ctx context.Context, restaurantID, menuItemID uuid.UUID) (MenuEntry, error)
}
