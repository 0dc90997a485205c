package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/services/menu/domain/models"
)

// MenuItemRepository is the persistence interface for the MenuItem aggregate.
// The domain layer owns this interface; infrastructure implements it.
type MenuItemRepository interface {
	// Save inserts a new item. Returns ErrMenuItemExists on a duplicate name.
	Save(ctx context.Context, item *models.MenuItem) error

	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error)

	// List returns every item of the restaurant, newest first.
	List(ctx context.Context, restaurantID uuid.UUID) ([]*models.MenuItem, error)

	// PublicMenu resolves a restaurant by subdomain and returns its
	// available items grouped by category order.
	PublicMenu(ctx context.Context, subdomain string) (*models.PublicMenu, error)

	// Update persists name, price, category and image changes.
	Update(ctx context.Context, item *models.MenuItem) error

	// ToggleAvailability flips Available and returns the updated item.
	ToggleAvailability(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error)

	Delete(ctx context.Context, restaurantID, id uuid.UUID) error

	// SaveMany inserts items in one transaction, skipping names the
	// restaurant already has. Returns how many were inserted.
	SaveMany(ctx context.Context, items []*models.MenuItem) (int, error)
}
