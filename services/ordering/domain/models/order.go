package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
)

const (
	maxItemNameLength = 255
	maxItemQty        = 1000
)

// LineItem is one entry of an order. Name and Price are captured when the
// item is ordered and never follow later menu edits. ID is only set for
// items added through the admin path.
type LineItem struct {
	ID    uuid.UUID   `json:"id,omitzero"`
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
	Qty   int         `json:"qty"`
}

// Amount returns Price * Qty.
func (li LineItem) Amount() money.Money {
	return li.Price.Mul(li.Qty)
}

// Validate enforces the name length, 0 < qty <= 1000, price >= 0 and a
// line amount that fits in money.MaxAmount.
func (li LineItem) Validate() error {
	name := strings.TrimSpace(li.Name)
	if name == "" || len(name) > maxItemNameLength {
		return fmt.Errorf("%w: %q", domain.ErrInvalidItemName, li.Name)
	}
	if li.Qty <= 0 || li.Qty > maxItemQty {
		return fmt.Errorf("%w: %q has qty %d", domain.ErrInvalidQuantity, li.Name, li.Qty)
	}
	if li.Price < 0 {
		return fmt.Errorf("%w: %q has price %s", domain.ErrInvalidPrice, li.Name, li.Price)
	}
	if _, err := li.Price.MulChecked(li.Qty); err != nil {
		return fmt.Errorf("%w: %q costs %s x %d", domain.ErrAmountTooLarge, li.Name, li.Price, li.Qty)
	}
	return nil
}

// ValidateItems checks a non-empty batch of new items.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return domain.ErrNoItems
	}
	for _, li := range items {
		if err := li.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SumItems returns the sum of Price*Qty over items.
func SumItems(items []LineItem) money.Money {
	var total money.Money
	for _, li := range items {
		total += li.Amount()
	}
	return total
}

// addItems returns base plus the amounts of items, or ErrAmountTooLarge when
// the running total would pass money.MaxAmount. Items must already be valid.
func addItems(base money.Money, items []LineItem) (money.Money, error) {
	total := base
	for _, li := range items {
		next, err := total.AddChecked(li.Amount())
		if err != nil {
			return 0, fmt.Errorf("%w: order total", domain.ErrAmountTooLarge)
		}
		total = next
	}
	return total, nil
}

// Order is the aggregate for one table's tab, from the first item placed
// until it is billed. Total always equals SumItems(Items); every mutation
// below keeps that true or fails without changing the order.
type Order struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID // tenant scope for every query
	TableNo      int
	CustomerName string
	Items        []LineItem
	Total        money.Money
	Status       OrderStatus
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrder opens a Received order holding items.
func NewOrder(restaurantID uuid.UUID, tableNo int, customerName string, items []LineItem) (*Order, error) {
	if restaurantID == uuid.Nil {
		return nil, domain.ErrMissingRestaurantID
	}
	if tableNo <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTable, tableNo)
	}
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	total, err := addItems(0, items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	owned := make([]LineItem, len(items))
	copy(owned, items)
	return &Order{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		TableNo:      tableNo,
		CustomerName: strings.TrimSpace(customerName),
		Items:        owned,
		Total:        total,
		Status:       StatusReceived,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AppendItems adds items after the existing ones and grows Total by their sum.
func (o *Order) AppendItems(items []LineItem) error {
	if !o.Status.IsOpen() {
		return domain.ErrOrderClosed
	}
	if err := ValidateItems(items); err != nil {
		return err
	}
	total, err := addItems(o.Total, items)
	if err != nil {
		return err
	}
	o.Items = append(o.Items, items...)
	o.Total = total
	o.touch()
	return nil
}

// RemoveFirstNamed drops the first item called name, leaving any later
// entries with the same name in place, and recomputes Total from what is left.
func (o *Order) RemoveFirstNamed(name string) (LineItem, error) {
	if !o.Status.IsOpen() {
		return LineItem{}, domain.ErrOrderClosed
	}
	for i, li := range o.Items {
		if li.Name != name {
			continue
		}
		remaining := make([]LineItem, 0, len(o.Items)-1)
		remaining = append(remaining, o.Items[:i]...)
		remaining = append(remaining, o.Items[i+1:]...)
		o.Items = remaining
		o.Total = SumItems(remaining)
		o.touch()
		return li, nil
	}
	return LineItem{}, fmt.Errorf("%w: %q", domain.ErrItemNotInOrder, name)
}

// TransitionTo moves the order one legal step forward.
func (o *Order) TransitionTo(next OrderStatus) error {
	if o.Status == StatusClosed {
		return fmt.Errorf("%w: order is closed", domain.ErrInvalidTransition)
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.touch()
	return nil
}

// Close moves the order to Closed. It reports false without error when the
// order was already closed, so billing the same order twice is harmless.
func (o *Order) Close() (bool, error) {
	if o.Status == StatusClosed {
		return false, nil
	}
	if err := o.TransitionTo(StatusClosed); err != nil {
		return false, err
	}
	return true, nil
}

// CheckTotal verifies the Total invariant.
func (o *Order) CheckTotal() error {
	if want := SumItems(o.Items); o.Total != want {
		return fmt.Errorf("%w: total %s, items sum %s", domain.ErrTotalOutOfSync, o.Total, want)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]LineItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
