package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
	domainevents "github.com/dineqr/dineqr/services/ordering/domain/events"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
)

const eventVersion = 1

const orderColumns = `id, restaurant_id, table_no, customer_name, items, total_paise, status, version, created_at, updated_at`

// OrderRepository implements repositories.OrderRepository against PostgreSQL.
// Items are stored as a JSONB array on the order row so one UPDATE keeps
// items and total in step.
type OrderRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewOrderRepository returns an OrderRepository. bus may be nil, in which
// case no events are published.
func NewOrderRepository(db *database.Database, bus *events.EventBus) *OrderRepository {
	return &OrderRepository{db: db, bus: bus}
}

// Transact runs fn in a transaction. database.WithTx re-runs fn on
// serialization failures and deadlocks.
func (r *OrderRepository) Transact(ctx context.Context, fn func(store repositories.OrderStore) error) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&orderStore{tx: tx, bus: r.bus})
	})
	return storageErr(err)
}

// GetByID reads an order without locking it.
func (r *OrderRepository) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, storageErr(err)
	}
	return o, nil
}

// ListRecent returns the newest orders first.
func (r *OrderRepository) ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, restaurantID, limit)
}

// ListKitchenQueue returns orders still in the kitchen, oldest first.
func (r *OrderRepository) ListKitchenQueue(ctx context.Context, restaurantID uuid.UUID) ([]*models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1 AND status NOT IN ('Served', 'Closed')
		ORDER BY created_at ASC`, restaurantID)
}

// ListCreatedBetween returns orders created in [from, to), oldest first.
func (r *OrderRepository) ListCreatedBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC`, restaurantID, from, to)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(fmt.Errorf("query orders: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	orders := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(fmt.Errorf("iterate orders: %w", err))
	}
	return orders, nil
}

// orderStore is the transaction-bound OrderStore.
type orderStore struct {
	tx  *sql.Tx
	bus *events.EventBus
}

func (s *orderStore) FindOpenByTable(ctx context.Context, restaurantID uuid.UUID, tableNo int) (*models.Order, error) {
	row := s.tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1 AND table_no = $2 AND status <> 'Closed'
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`, restaurantID, tableNo)
	return scanOrder(row)
}

func (s *orderStore) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	row := s.tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND restaurant_id = $2 FOR UPDATE`, id, restaurantID)
	return scanOrder(row)
}

func (s *orderStore) Insert(ctx context.Context, o *models.Order) error {
	if err := o.CheckTotal(); err != nil {
		return err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	if _, err := s.tx.ExecContext(ctx, `INSERT INTO orders
		(id, restaurant_id, table_no, customer_name, items, total_paise, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.RestaurantID, o.TableNo, o.CustomerName, items, o.Total.Paise(),
		string(o.Status), o.Version, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return domain.ErrOpenOrderExists
		case database.IsForeignKeyViolation(err):
			return fmt.Errorf("%w: %s", domain.ErrRestaurantMissing, o.RestaurantID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if s.bus == nil {
		return nil
	}
	evt := domainevents.OrderPlacedEvent{
		EventID:      uuid.New(),
		Version:      eventVersion,
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		TableNo:      o.TableNo,
		CustomerName: o.CustomerName,
		Items:        toEventLines(o.Items),
		Total:        o.Total,
		OccurredAt:   o.CreatedAt,
	}
	return s.bus.PublishTx(ctx, s.tx, domainevents.TopicOrderPlaced, evt.EventID, eventVersion, evt)
}

func (s *orderStore) SaveItems(ctx context.Context, o *models.Order) error {
	if err := o.CheckTotal(); err != nil {
		return err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	res, err := s.tx.ExecContext(ctx, `UPDATE orders
		SET items = $1, total_paise = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND restaurant_id = $5 AND version = $6`,
		items, o.Total.Paise(), o.UpdatedAt, o.ID, o.RestaurantID, o.Version)
	if err != nil {
		return fmt.Errorf("update order items: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	o.Version++
	return nil
}

func (s *orderStore) SaveStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error {
	res, err := s.tx.ExecContext(ctx, `UPDATE orders
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND restaurant_id = $4 AND version = $5`,
		string(o.Status), o.UpdatedAt, o.ID, o.RestaurantID, o.Version)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	o.Version++

	if s.bus == nil {
		return nil
	}
	if o.Status == models.StatusClosed {
		evt := domainevents.OrderClosedEvent{
			EventID:      uuid.New(),
			Version:      eventVersion,
			OrderID:      o.ID,
			RestaurantID: o.RestaurantID,
			TableNo:      o.TableNo,
			Total:        o.Total,
			OccurredAt:   o.UpdatedAt,
		}
		return s.bus.PublishTx(ctx, s.tx, domainevents.TopicOrderClosed, evt.EventID, eventVersion, evt)
	}
	evt := domainevents.OrderStatusChangedEvent{
		EventID:      uuid.New(),
		Version:      eventVersion,
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		From:         string(from),
		To:           string(o.Status),
		OccurredAt:   o.UpdatedAt,
	}
	return s.bus.PublishTx(ctx, s.tx, domainevents.TopicOrderStatusMoved, evt.EventID, eventVersion, evt)
}

func (s *orderStore) InsertAdditions(ctx context.Context, adds []models.KitchenAddition) error {
	for i := range adds {
		a := &adds[i]
		var itemID *uuid.UUID
		if a.Item.ID != uuid.Nil {
			itemID = &a.Item.ID
		}
		if err := s.tx.QueryRowContext(ctx, `INSERT INTO order_additions
			(id, restaurant_id, order_id, table_no, item_id, item_name, qty, price_paise, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING seq`,
			a.ID, a.RestaurantID, a.OrderID, a.TableNo, itemID, a.Item.Name, a.Item.Qty,
			a.Item.Price.Paise(), string(a.Status), a.CreatedAt,
		).Scan(&a.Seq); err != nil {
			return fmt.Errorf("insert addition: %w", err)
		}

		if s.bus == nil {
			continue
		}
		evt := domainevents.AdditionCreatedEvent{
			EventID:      uuid.New(),
			Version:      eventVersion,
			AdditionID:   a.ID,
			OrderID:      a.OrderID,
			RestaurantID: a.RestaurantID,
			TableNo:      a.TableNo,
			Item:         domainevents.EventLine{Name: a.Item.Name, Price: a.Item.Price, Qty: a.Item.Qty},
			OccurredAt:   a.CreatedAt,
		}
		if err := s.bus.PublishTx(ctx, s.tx, domainevents.TopicAdditionCreated, evt.EventID, eventVersion, evt); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o      models.Order
		items  []byte
		total  int64
		status string
	)
	if err := row.Scan(&o.ID, &o.RestaurantID, &o.TableNo, &o.CustomerName, &items, &total,
		&status, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	o.Total = money.Money(total)
	o.Status = models.OrderStatus(status)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

func toEventLines(items []models.LineItem) []domainevents.EventLine {
	out := make([]domainevents.EventLine, len(items))
	for i, li := range items {
		out[i] = domainevents.EventLine{Name: li.Name, Price: li.Price, Qty: li.Qty}
	}
	return out
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// storageErr passes domain errors through and classifies everything else
// coming out of the database as a storage failure.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != domain.KindInternal || errors.Is(err, domain.ErrTotalOutOfSync) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
