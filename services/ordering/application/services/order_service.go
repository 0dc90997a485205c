package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
	domainsvcs "github.com/dineqr/dineqr/services/ordering/domain/services"
)

const (
	// DefaultRecentLimit is the size of the admin dashboard order list.
	DefaultRecentLimit = 50
	maxRecentLimit     = 200
)

// TableLocker serialises placements for one table. Optional.
type TableLocker interface {
	Acquire(ctx context.Context, restaurantID uuid.UUID, tableNo int) (func(), error)
}

// PlaceOrderInput is a customer placement for one table.
type PlaceOrderInput struct {
	RestaurantID uuid.UUID
	TableNo      int
	CustomerName string
	Items        []models.LineItem
}

// PlaceOrderResult reports whether the placement opened a new order or
// merged into the table's open one.
type PlaceOrderResult struct {
	Order     *models.Order
	Created   bool
	Additions []models.KitchenAddition
}

// OrdersByDate is the admin day view.
type OrdersByDate struct {
	Date    string          `json:"date"`
	Orders  []*models.Order `json:"orders"`
	Count   int             `json:"count"`
	Revenue money.Money     `json:"revenue"`
}

// OrderService orchestrates the Order aggregate. Every mutation runs as one
// read-modify-write inside OrderRepository.Transact; events are published by
// the repository layer (outbox pattern).
type OrderService struct {
	repo        repositories.OrderRepository
	restaurants repositories.RestaurantRepository
	menu        repositories.MenuLookup
	locker      TableLocker
	feed        *KitchenService
	metrics     *Metrics
	log         logger.Logger
}

// NewOrderService returns an OrderService. locker, feed and metrics may be nil.
func NewOrderService(
	repo repositories.OrderRepository,
	restaurants repositories.RestaurantRepository,
	menu repositories.MenuLookup,
	locker TableLocker,
	feed *KitchenService,
	metrics *Metrics,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		repo:        repo,
		restaurants: restaurants,
		menu:        menu,
		locker:      locker,
		feed:        feed,
		metrics:     metrics,
		log:         log,
	}
}

// PlaceOrder merges in.Items into the table's open order, or opens a new one.
// A conflict on creation means another request opened the order first, so the
// find-or-create sequence is run once more and merges instead.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	ctx, span := tracer.Start(ctx, "ordering.PlaceOrder", trace.WithAttributes(
		attribute.String("restaurant_id", in.RestaurantID.String()),
		attribute.Int("table_no", in.TableNo),
	))
	defer span.End()

	if in.RestaurantID == uuid.Nil {
		return nil, domain.ErrMissingRestaurantID
	}
	if in.TableNo <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTable, in.TableNo)
	}
	if err := models.ValidateItems(in.Items); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, in.RestaurantID, in.TableNo)
		if err != nil {
			s.log.WarnContext(ctx, "table lock unavailable, relying on storage constraint",
				"restaurant_id", in.RestaurantID, "table_no", in.TableNo, "error", err)
		} else {
			defer release()
		}
	}

	res, err := s.placeOnce(ctx, in)
	if errors.Is(err, domain.ErrConflict) {
		s.log.InfoContext(ctx, "placement conflicted, retrying",
			"restaurant_id", in.RestaurantID, "table_no", in.TableNo, "error", err)
		res, err = s.placeOnce(ctx, in)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "place order failed")
		return nil, fmt.Errorf("place order: %w", err)
	}

	if res.Created {
		s.metrics.RecordPlaced(ctx, "created")
		s.log.InfoContext(ctx, "order opened",
			"order_id", res.Order.ID, "restaurant_id", in.RestaurantID, "table_no", in.TableNo)
	} else {
		s.metrics.RecordPlaced(ctx, "merged")
		s.metrics.RecordAdditions(ctx, "placement", len(res.Additions))
		s.feed.invalidate(ctx, in.RestaurantID)
		s.log.InfoContext(ctx, "items merged into open order",
			"order_id", res.Order.ID, "restaurant_id", in.RestaurantID, "items", len(in.Items))
	}
	span.SetAttributes(attribute.String("order_id", res.Order.ID.String()), attribute.Bool("created", res.Created))
	return res, nil
}

func (s *OrderService) placeOnce(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	var res *PlaceOrderResult
	err := s.repo.Transact(ctx, func(store repositories.OrderStore) error {
		res = nil
		open, err := store.FindOpenByTable(ctx, in.RestaurantID, in.TableNo)
		if errors.Is(err, domain.ErrOrderNotFound) {
			o, err := models.NewOrder(in.RestaurantID, in.TableNo, in.CustomerName, in.Items)
			if err != nil {
				return err
			}
			if err := store.Insert(ctx, o); err != nil {
				return err
			}
			res = &PlaceOrderResult{Order: o, Created: true}
			return nil
		}
		if err != nil {
			return err
		}

		if err := open.AppendItems(in.Items); err != nil {
			return err
		}
		if err := store.SaveItems(ctx, open); err != nil {
			return err
		}
		adds := models.NewAdditions(open, in.Items, open.UpdatedAt)
		if err := store.InsertAdditions(ctx, adds); err != nil {
			return err
		}
		res = &PlaceOrderResult{Order: open, Additions: adds}
		return nil
	})
	return res, err
}

// AddItem appends one menu item to an order on behalf of an admin. The new
// line gets its own id and produces one kitchen addition.
func (s *OrderService) AddItem(ctx context.Context, restaurantID, orderID, menuItemID uuid.UUID, qty int) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "ordering.AddItem", trace.WithAttributes(
		attribute.String("order_id", orderID.String()),
	))
	defer span.End()

	if qty <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, qty)
	}

	entry, err := s.menu.LookupMenuItem(ctx, restaurantID, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	if !entry.Available {
		return nil, fmt.Errorf("add item: %w: %q", domain.ErrMenuItemUnavailable, entry.Name)
	}
	line := models.LineItem{ID: uuid.New(), Name: entry.Name, Price: entry.Price, Qty: qty}

	var updated *models.Order
	err = s.repo.Transact(ctx, func(store repositories.OrderStore) error {
		o, err := store.GetByID(ctx, restaurantID, orderID)
		if err != nil {
			return err
		}
		if err := o.AppendItems([]models.LineItem{line}); err != nil {
			return err
		}
		if err := store.SaveItems(ctx, o); err != nil {
			return err
		}
		if err := store.InsertAdditions(ctx, models.NewAdditions(o, []models.LineItem{line}, o.UpdatedAt)); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("add item: %w", err)
	}

	s.metrics.RecordAdditions(ctx, "admin", 1)
	s.feed.invalidate(ctx, restaurantID)
	s.log.InfoContext(ctx, "item added to order",
		"order_id", orderID, "restaurant_id", restaurantID, "item", line.Name, "qty", qty)
	return updated, nil
}

// RemoveItem drops the first line named name. The kitchen is not notified.
func (s *OrderService) RemoveItem(ctx context.Context, restaurantID, orderID uuid.UUID, name string) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "ordering.RemoveItem", trace.WithAttributes(
		attribute.String("order_id", orderID.String()),
	))
	defer span.End()

	var updated *models.Order
	err := s.repo.Transact(ctx, func(store repositories.OrderStore) error {
		o, err := store.GetByID(ctx, restaurantID, orderID)
		if err != nil {
			return err
		}
		if _, err := o.RemoveFirstNamed(name); err != nil {
			return err
		}
		if err := store.SaveItems(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("remove item: %w", err)
	}

	s.log.InfoContext(ctx, "item removed from order",
		"order_id", orderID, "restaurant_id", restaurantID, "item", name)
	return updated, nil
}

// UpdateStatus is the kitchen path of the status machine. Requesting the
// status the order already has is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, restaurantID, orderID uuid.UUID, status string) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "ordering.UpdateStatus", trace.WithAttributes(
		attribute.String("order_id", orderID.String()),
		attribute.String("status", status),
	))
	defer span.End()

	next, err := models.ParseKitchenStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.repo.Transact(ctx, func(store repositories.OrderStore) error {
		o, err := store.GetByID(ctx, restaurantID, orderID)
		if err != nil {
			return err
		}
		if o.Status == next {
			updated = o
			return nil
		}
		from := o.Status
		if err := o.TransitionTo(next); err != nil {
			return err
		}
		if err := store.SaveStatus(ctx, o, from); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update status: %w", err)
	}
	return updated, nil
}

// ComputeBill prices an order without changing it.
func (s *OrderService) ComputeBill(ctx context.Context, restaurantID, orderID uuid.UUID, scheme string) (*domainsvcs.Bill, error) {
	ctx, span := tracer.Start(ctx, "ordering.ComputeBill")
	defer span.End()

	ts, err := domainsvcs.ParseTaxScheme(scheme)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, restaurantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("compute bill: %w", err)
	}
	return s.bill(ctx, o, ts)
}

// CloseAndBill closes the order and returns its bill. Billing an order that
// is already Closed returns the same bill and changes nothing.
func (s *OrderService) CloseAndBill(ctx context.Context, restaurantID, orderID uuid.UUID, scheme string) (*domainsvcs.Bill, error) {
	ctx, span := tracer.Start(ctx, "ordering.CloseAndBill", trace.WithAttributes(
		attribute.String("order_id", orderID.String()),
	))
	defer span.End()

	ts, err := domainsvcs.ParseTaxScheme(scheme)
	if err != nil {
		return nil, err
	}

	var (
		closed    *models.Order
		closedNow bool
	)
	err = s.repo.Transact(ctx, func(store repositories.OrderStore) error {
		o, err := store.GetByID(ctx, restaurantID, orderID)
		if err != nil {
			return err
		}
		from := o.Status
		closedNow, err = o.Close()
		if err != nil {
			return err
		}
		if closedNow {
			if err := store.SaveStatus(ctx, o, from); err != nil {
				return err
			}
		}
		closed = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("close and bill: %w", err)
	}

	if closedNow {
		s.metrics.RecordBillClosed(ctx, string(ts))
		s.log.InfoContext(ctx, "order closed",
			"order_id", orderID, "restaurant_id", restaurantID, "total", closed.Total.String())
	}
	return s.bill(ctx, closed, ts)
}

func (s *OrderService) bill(ctx context.Context, o *models.Order, scheme domainsvcs.TaxScheme) (*domainsvcs.Bill, error) {
	b, err := domainsvcs.ComputeBill(o, scheme)
	if err != nil {
		return nil, err
	}
	if s.restaurants != nil {
		r, err := s.restaurants.GetByID(ctx, o.RestaurantID)
		switch {
		case err == nil:
			b.Restaurant = r
		case errors.Is(err, domain.ErrNotFound):
			s.log.WarnContext(ctx, "bill without restaurant header", "restaurant_id", o.RestaurantID)
		default:
			return nil, fmt.Errorf("load restaurant: %w", err)
		}
	}
	return b, nil
}

// GetOrder returns one order scoped to the restaurant.
func (s *OrderService) GetOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*models.Order, error) {
	o, err := s.repo.GetByID(ctx, restaurantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListRecent returns the newest orders. limit <= 0 means DefaultRecentLimit.
func (s *OrderService) ListRecent(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)
	orders, err := s.repo.ListRecent(ctx, restaurantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListKitchenQueue returns orders still being worked on, oldest first.
func (s *OrderService) ListKitchenQueue(ctx context.Context, restaurantID uuid.UUID) ([]*models.Order, error) {
	orders, err := s.repo.ListKitchenQueue(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list kitchen queue: %w", err)
	}
	return orders, nil
}

// OrdersByDate lists orders created on date (YYYY-MM-DD, UTC). Revenue
// counts Served and Closed orders only.
func (s *OrderService) OrdersByDate(ctx context.Context, restaurantID uuid.UUID, date string) (*OrdersByDate, error) {
	from, to, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListCreatedBetween(ctx, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("orders by date: %w", err)
	}

	out := &OrdersByDate{Date: date, Orders: orders, Count: len(orders)}
	for _, o := range orders {
		if o.Status == models.StatusServed || o.Status == models.StatusClosed {
			out.Revenue += o.Total
		}
	}
	return out, nil
}

func dayBounds(date string) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", domain.ErrValidation, date)
	}
	return from, from.AddDate(0, 0, 1), nil
}
