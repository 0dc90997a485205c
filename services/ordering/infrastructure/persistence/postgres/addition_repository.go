package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// AdditionRepository implements repositories.AdditionRepository against PostgreSQL.
type AdditionRepository struct {
	db *database.Database
}

// NewAdditionRepository returns an AdditionRepository.
func NewAdditionRepository(db *database.Database) *AdditionRepository {
	return &AdditionRepository{db: db}
}

// ListNew returns New additions oldest first. seq breaks created_at ties so
// items appended in one request keep their order.
func (r *AdditionRepository) ListNew(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.KitchenAddition, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT
			id, seq, restaurant_id, order_id, table_no, item_id, item_name, qty, price_paise, status, created_at
		FROM order_additions
		WHERE restaurant_id = $1 AND status = 'New'
		ORDER BY created_at ASC, seq ASC
		LIMIT $2`, restaurantID, limit)
	if err != nil {
		return nil, storageErr(fmt.Errorf("query additions: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	adds := []models.KitchenAddition{}
	for rows.Next() {
		var (
			a      models.KitchenAddition
			itemID uuid.NullUUID
			price  int64
			status string
		)
		if err := rows.Scan(&a.ID, &a.Seq, &a.RestaurantID, &a.OrderID, &a.TableNo, &itemID,
			&a.Item.Name, &a.Item.Qty, &price, &status, &a.CreatedAt); err != nil {
			return nil, storageErr(fmt.Errorf("scan addition: %w", err))
		}
		if itemID.Valid {
			a.Item.ID = itemID.UUID
		}
		a.Item.Price = money.Money(price)
		a.Status = models.AdditionStatus(status)
		a.CreatedAt = a.CreatedAt.UTC()
		adds = append(adds, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(fmt.Errorf("iterate additions: %w", err))
	}
	return adds, nil
}

// Acknowledge sets the addition to Preparing. Running it on an addition
// that is already Preparing rewrites the same value, so it is idempotent.
func (r *AdditionRepository) Acknowledge(ctx context.Context, restaurantID, id uuid.UUID) error {
	var status string
	err := r.db.DB().QueryRowContext(ctx, `UPDATE order_additions
		SET status = $1
		WHERE id = $2 AND restaurant_id = $3
		RETURNING status`, string(models.AdditionPreparing), id, restaurantID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAdditionNotFound
		}
		return storageErr(fmt.Errorf("acknowledge addition: %w", err))
	}
	return nil
}
