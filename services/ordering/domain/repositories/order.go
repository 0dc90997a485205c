package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// OrderStore is the transactional view of order storage handed to
// OrderRepository.Transact. Reads lock the rows they return until the
// transaction ends. Writes publish their domain events in the same
// transaction.
type OrderStore interface {
	// FindOpenByTable returns the newest non-Closed order for the table,
	// or ErrOrderNotFound.
	FindOpenByTable(ctx context.Context, restaurantID uuid.UUID, tableNo int) (*models.Order, error)

	// GetByID returns the order scoped to the restaurant, or ErrOrderNotFound.
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error)

	// Insert stores a new order. Returns ErrOpenOrderExists when the table
	// already has an open order.
	Insert(ctx context.Context, o *models.Order) error

	// SaveItems writes Items and Total. Returns ErrConcurrentUpdate when
	// o.Version no longer matches storage; bumps o.Version on success.
	SaveItems(ctx context.Context, o *models.Order) error

	// SaveStatus writes Status, with the same version check as SaveItems.
	// from is the status the order had when it was read.
	SaveStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error

	// InsertAdditions stores kitchen addition records.
	InsertAdditions(ctx context.Context, adds []models.KitchenAddition) error
}

// OrderRepository is the persistence interface for the Order aggregate.
// The domain layer owns this interface; infrastructure implements it.
type OrderRepository interface {
	// Transact runs fn in one storage transaction. Transient failures are
	// retried by re-running fn; after that they surface as ErrStorage.
	Transact(ctx context.Context, fn func(store OrderStore) error) error

	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error)

	// ListRecent returns up to limit orders, newest first.
	ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*models.Order, error)

	// ListKitchenQueue returns orders not yet Served or Closed, oldest first.
	ListKitchenQueue(ctx context.Context, restaurantID uuid.UUID) ([]*models.Order, error)

	// ListCreatedBetween returns orders created in [from, to), oldest first.
	ListCreatedBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*models.Order, error)
}

// AdditionRepository stores kitchen addition records.
type AdditionRepository interface {
	// ListNew returns up to limit New additions, oldest first.
	ListNew(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.KitchenAddition, error)

	// Acknowledge moves a New addition to Preparing. Already-Preparing is a
	// no-op. Returns ErrAdditionNotFound when the id is unknown for the restaurant.
	Acknowledge(ctx context.Context, restaurantID, id uuid.UUID) error
}

// RestaurantRepository reads tenants and platform-wide aggregates.
type RestaurantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Restaurant, error)

	// UpdateProfile overwrites the profile fields and returns the updated
	// restaurant, or ErrRestaurantMissing.
	UpdateProfile(ctx context.Context, id uuid.UUID, p models.RestaurantProfile) (*models.Restaurant, error)

	// Stats returns order count and revenue per restaurant, newest restaurant first.
	Stats(ctx context.Context) ([]models.RestaurantStats, error)

	// DailySales aggregates every restaurant's orders created in [from, to).
	DailySales(ctx context.Context, from, to time.Time) ([]models.DailySales, error)
}
