// Package menu adapts the menu bounded context to the ordering MenuLookup port.
package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	menusvcs "github.com/dineqr/dineqr/services/menu/application/services"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	"github.com/dineqr/dineqr/services/menu/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
)

// ItemGetter is the slice of the menu service ordering depends on.
type ItemGetter interface {
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error)
}

var _ ItemGetter = (*menusvcs.MenuService)(nil)

// Lookup resolves menu items through the menu service, translating its
// errors into ordering sentinels.
type Lookup struct {
	items ItemGetter
}

// NewLookup returns a Lookup backed by items.
func NewLookup(items ItemGetter) *Lookup {
	return &Lookup{items: items}
}

// LookupMenuItem returns the name, price and availability of a menu item.
func (l *Lookup) LookupMenuItem(ctx context.Context, restaurantID, menuItemID uuid.UUID) (repositories.MenuEntry, error) {
	item, err := l.items.GetByID(ctx, restaurantID, menuItemID)
	if err != nil {
		if errors.Is(err, menudomain.ErrMenuItemNotFound) {
			return repositories.MenuEntry{}, fmt.Errorf("%w: %s", domain.ErrMenuItemNotFound, menuItemID)
		}
		return repositories.MenuEntry{}, fmt.Errorf("%w: menu lookup: %w", domain.ErrStorage, err)
	}
	return repositories.MenuEntry{
		Name:      item.Name.String(),
		Price:     item.Price,
		Available: item.Available,
	}, nil
}
