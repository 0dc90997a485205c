package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// RestaurantRepository implements repositories.RestaurantRepository against PostgreSQL.
type RestaurantRepository struct {
	db *database.Database
}

// NewRestaurantRepository returns a RestaurantRepository.
func NewRestaurantRepository(db *database.Database) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

const restaurantColumns = `id, name, subdomain, gstin, address, phone, created_at`

// GetByID returns the restaurant or ErrRestaurantMissing.
func (r *RestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return r.get(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
}

// GetBySubdomain returns the restaurant or ErrRestaurantMissing.
func (r *RestaurantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Restaurant, error) {
	return r.get(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE subdomain = $1`, subdomain)
}

// UpdateProfile overwrites name, gstin, address and phone.
func (r *RestaurantRepository) UpdateProfile(ctx context.Context, id uuid.UUID, p models.RestaurantProfile) (*models.Restaurant, error) {
	return r.get(ctx, `UPDATE restaurants SET name = $2, gstin = $3, address = $4, phone = $5
		WHERE id = $1 RETURNING `+restaurantColumns, id, p.Name, p.GSTIN, p.Address, p.Phone)
}

func (r *RestaurantRepository) get(ctx context.Context, query string, args ...any) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(
		&rest.ID, &rest.Name, &rest.Subdomain, &rest.GSTIN, &rest.Address, &rest.Phone, &rest.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRestaurantMissing
		}
		return nil, storageErr(fmt.Errorf("query restaurant: %w", err))
	}
	return &rest, nil
}

// Stats counts every order and sums every total per restaurant, newest restaurant first.
func (r *RestaurantRepository) Stats(ctx context.Context) ([]models.RestaurantStats, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT r.id, r.name, r.subdomain,
			COUNT(o.id), COALESCE(SUM(o.total_paise), 0)
		FROM restaurants r
		LEFT JOIN orders o ON o.restaurant_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, storageErr(fmt.Errorf("query restaurant stats: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	stats := []models.RestaurantStats{}
	for rows.Next() {
		var (
			s       models.RestaurantStats
			revenue int64
		)
		if err := rows.Scan(&s.RestaurantID, &s.Name, &s.Subdomain, &s.OrderCount, &revenue); err != nil {
			return nil, storageErr(fmt.Errorf("scan restaurant stats: %w", err))
		}
		s.Revenue = money.Money(revenue)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(fmt.Errorf("iterate restaurant stats: %w", err))
	}
	return stats, nil
}

// DailySales aggregates orders created in [from, to) per restaurant.
// Revenue only counts Served and Closed orders.
func (r *RestaurantRepository) DailySales(ctx context.Context, from, to time.Time) ([]models.DailySales, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT r.id,
			COUNT(o.id),
			COALESCE(SUM(o.total_paise) FILTER (WHERE o.status IN ('Served', 'Closed')), 0)
		FROM restaurants r
		LEFT JOIN orders o ON o.restaurant_id = r.id AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY r.id
		ORDER BY r.id`, from, to)
	if err != nil {
		return nil, storageErr(fmt.Errorf("query daily sales: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	date := from.Format(time.DateOnly)
	sales := []models.DailySales{}
	for rows.Next() {
		var (
			d       models.DailySales
			revenue int64
		)
		if err := rows.Scan(&d.RestaurantID, &d.OrderCount, &revenue); err != nil {
			return nil, storageErr(fmt.Errorf("scan daily sales: %w", err))
		}
		d.Date = date
		d.Revenue = money.Money(revenue)
		sales = append(sales, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(fmt.Errorf("iterate daily sales: %w", err))
	}
	return sales, nil
}
