package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/money"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	domainevents "github.com/dineqr/dineqr/services/menu/domain/events"
	"github.com/dineqr/dineqr/services/menu/domain/models"
)

const (
	eventVersion = 1
	itemColumns  = `id, restaurant_id, name, price_paise, category, image_url, available, created_at`
)

// MenuItemRepository implements repositories.MenuItemRepository against PostgreSQL.
type MenuItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewMenuItemRepository returns a MenuItemRepository backed by the given pool
// and event bus. bus may be nil, in which case no events are published.
func NewMenuItemRepository(db *database.Database, bus *events.EventBus) *MenuItemRepository {
	return &MenuItemRepository{db: db, bus: bus}
}

// Save persists a new MenuItem and publishes MenuItemCreatedEvent in the same
// transaction. Returns ErrMenuItemExists on a duplicate name.
func (r *MenuItemRepository) Save(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		inserted, err := insertItem(ctx, tx, item, false)
		if err != nil {
			return err
		}
		if !inserted {
			return menudomain.ErrMenuItemExists
		}
		return r.publishCreated(ctx, tx, item)
	})
}

// SaveMany inserts items in one transaction, skipping names that already exist.
func (r *MenuItemRepository) SaveMany(ctx context.Context, items []*models.MenuItem) (int, error) {
	var n int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n = 0
		for _, item := range items {
			inserted, err := insertItem(ctx, tx, item, true)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			n++
			if err := r.publishCreated(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	return n, err
}

// insertItem reports false when the name already exists for the restaurant.
func insertItem(ctx context.Context, tx *sql.Tx, item *models.MenuItem, skipExisting bool) (bool, error) {
	query := `INSERT INTO menu_items
		(id, restaurant_id, name, price_paise, category, image_url, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if skipExisting {
		query += ` ON CONFLICT DO NOTHING`
	}
	res, err := tx.ExecContext(ctx, query,
		item.ID, item.RestaurantID, item.Name.String(), item.Price.Paise(),
		item.Category, item.ImageURL, item.Available, item.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert menu item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// GetByID retrieves an item scoped to the restaurant. Returns ErrMenuItemNotFound if absent.
func (r *MenuItemRepository) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM menu_items WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	return scanItem(row)
}

// List returns the restaurant's menu, newest first.
func (r *MenuItemRepository) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.MenuItem, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`, restaurantID)
}

// PublicMenu resolves the restaurant by subdomain and lists its available items.
func (r *MenuItemRepository) PublicMenu(ctx context.Context, subdomain string) (*models.PublicMenu, error) {
	menu := &models.PublicMenu{}
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT id, name FROM restaurants WHERE subdomain = $1`, subdomain,
	).Scan(&menu.RestaurantID, &menu.RestaurantName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, menudomain.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("query restaurant: %w", err)
	}

	items, err := r.list(ctx, `SELECT `+itemColumns+` FROM menu_items
		WHERE restaurant_id = $1 AND available
		ORDER BY category, name`, menu.RestaurantID)
	if err != nil {
		return nil, err
	}
	menu.Items = items
	return menu, nil
}

func (r *MenuItemRepository) list(ctx context.Context, query string, args ...any) ([]*models.MenuItem, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	items := []*models.MenuItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return items, nil
}

// Update persists name, price, category and image changes.
func (r *MenuItemRepository) Update(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE menu_items
			SET name = $1, price_paise = $2, category = $3, image_url = $4
			WHERE id = $5 AND restaurant_id = $6`,
			item.Name.String(), item.Price.Paise(), item.Category, item.ImageURL, item.ID, item.RestaurantID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return menudomain.ErrMenuItemExists
			}
			return fmt.Errorf("update menu item: %w", err)
		}
		if err := expectFound(res); err != nil {
			return err
		}
		return r.publishChanged(ctx, tx, item.RestaurantID, item.ID, item.Available, false)
	})
}

// ToggleAvailability flips the available flag and returns the updated item.
func (r *MenuItemRepository) ToggleAvailability(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = scanItem(tx.QueryRowContext(ctx, `UPDATE menu_items
			SET available = NOT available
			WHERE id = $1 AND restaurant_id = $2
			RETURNING `+itemColumns, id, restaurantID))
		if err != nil {
			return err
		}
		return r.publishChanged(ctx, tx, restaurantID, id, item.Available, false)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item scoped to the restaurant.
func (r *MenuItemRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
		if err != nil {
			return fmt.Errorf("delete menu item: %w", err)
		}
		if err := expectFound(res); err != nil {
			return err
		}
		return r.publishChanged(ctx, tx, restaurantID, id, false, true)
	})
}

func (r *MenuItemRepository) publishCreated(ctx context.Context, tx *sql.Tx, item *models.MenuItem) error {
	if r.bus == nil {
		return nil
	}
	evt := domainevents.MenuItemCreatedEvent{
		EventID:      uuid.New(),
		Version:      eventVersion,
		ItemID:       item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name.String(),
		Price:        item.Price,
		Category:     item.Category,
		OccurredAt:   item.CreatedAt,
	}
	return r.bus.PublishTx(ctx, tx, domainevents.TopicMenuItemCreated, evt.EventID, eventVersion, evt)
}

func (r *MenuItemRepository) publishChanged(ctx context.Context, tx *sql.Tx, restaurantID, id uuid.UUID, available, deleted bool) error {
	if r.bus == nil {
		return nil
	}
	evt := domainevents.MenuItemChangedEvent{
		EventID:      uuid.New(),
		Version:      eventVersion,
		ItemID:       id,
		RestaurantID: restaurantID,
		Available:    available,
		Deleted:      deleted,
		OccurredAt:   time.Now().UTC(),
	}
	return r.bus.PublishTx(ctx, tx, domainevents.TopicMenuItemChanged, evt.EventID, eventVersion, evt)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem maps a menu_items row to a domain MenuItem.
func scanItem(row rowScanner) (*models.MenuItem, error) {
	var (
		item  models.MenuItem
		name  string
		price int64
	)
	if err := row.Scan(&item.ID, &item.RestaurantID, &name, &price, &item.Category,
		&item.ImageURL, &item.Available, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, menudomain.ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("scan menu item: %w", err)
	}
	item.Name = models.ItemName(name)
	item.Price = money.Money(price)
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}

func expectFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return menudomain.ErrMenuItemNotFound
	}
	return nil
}
