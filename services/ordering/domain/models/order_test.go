package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
)

func item(name, price string, qty int) LineItem {
	return LineItem{Name: name, Price: money.MustParse(price), Qty: qty}
}

func TestNewOrder(t *testing.T) {
	restaurantID := uuid.New()

	t.Run("opens a received order with summed total", func(t *testing.T) {
		o, err := NewOrder(restaurantID, 4, " Asha ", []LineItem{item("Tea", "10", 2), item("Coffee", "15", 2)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.ID == uuid.Nil {
			t.Fatal("expected non-zero ID")
		}
		if o.Status != StatusReceived {
			t.Fatalf("expected Received, got %s", o.Status)
		}
		if o.Total != money.MustParse("50") {
			t.Fatalf("expected total 50.00, got %s", o.Total)
		}
		if o.CustomerName != "Asha" {
			t.Fatalf("expected trimmed name, got %q", o.CustomerName)
		}
		if o.Version != 1 {
			t.Fatalf("expected version 1, got %d", o.Version)
		}
	})

	t.Run("copies items", func(t *testing.T) {
		items := []LineItem{item("Tea", "10", 1)}
		o, err := NewOrder(restaurantID, 1, "", items)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items[0].Name = "Changed"
		if o.Items[0].Name != "Tea" {
			t.Fatal("order shares the caller's slice")
		}
	})

	tests := []struct {
		name         string
		restaurantID uuid.UUID
		tableNo      int
		items        []LineItem
		wantErr      error
	}{
		{"missing restaurant", uuid.Nil, 1, []LineItem{item("Tea", "10", 1)}, domain.ErrMissingRestaurantID},
		{"zero table", restaurantID, 0, []LineItem{item("Tea", "10", 1)}, domain.ErrInvalidTable},
		{"no items", restaurantID, 1, nil, domain.ErrNoItems},
		{"zero qty", restaurantID, 1, []LineItem{item("Tea", "10", 0)}, domain.ErrInvalidQuantity},
		{"negative price", restaurantID, 1, []LineItem{{Name: "Tea", Price: -1, Qty: 1}}, domain.ErrInvalidPrice},
		{"blank name", restaurantID, 1, []LineItem{item("  ", "10", 1)}, domain.ErrInvalidItemName},
		{"long name", restaurantID, 1, []LineItem{item(strings.Repeat("x", 256), "10", 1)}, domain.ErrInvalidItemName},
		{"qty above limit", restaurantID, 1, []LineItem{item("Tea", "10", 1001)}, domain.ErrInvalidQuantity},
		{"line amount overflows", restaurantID, 1, []LineItem{item("Thali", "9999999999999.99", 1000)}, domain.ErrAmountTooLarge},
		{"running total overflows", restaurantID, 1, []LineItem{
			item("Thali", "9999999999999.99", 1),
			item("Thali", "9999999999999.99", 1),
		}, domain.ErrAmountTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.restaurantID, tt.tableNo, "", tt.items)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestOrder_AppendItems(t *testing.T) {
	o, _ := NewOrder(uuid.New(), 2, "", []LineItem{item("Tea", "10", 1)})

	if err := o.AppendItems([]LineItem{item("Samosa", "12.50", 2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.Items) != 2 || o.Items[1].Name != "Samosa" {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
	if o.Total != money.MustParse("35") {
		t.Fatalf("expected 35.00, got %s", o.Total)
	}

	t.Run("invalid batch leaves order untouched", func(t *testing.T) {
		before := o.Clone()
		err := o.AppendItems([]LineItem{item("Vada", "5", 1), item("Bad", "5", -1)})
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if len(o.Items) != len(before.Items) || o.Total != before.Total {
			t.Fatal("order changed on failed append")
		}
	})

	t.Run("total past the maximum leaves order untouched", func(t *testing.T) {
		before := o.Clone()
		err := o.AppendItems([]LineItem{item("Thali", "9999999999999.99", 1)})
		if !errors.Is(err, domain.ErrAmountTooLarge) {
			t.Fatalf("expected ErrAmountTooLarge, got %v", err)
		}
		if len(o.Items) != len(before.Items) || o.Total != before.Total {
			t.Fatal("order changed on failed append")
		}
	})

	t.Run("closed order rejects items", func(t *testing.T) {
		closed := o.Clone()
		closed.Status = StatusClosed
		if err := closed.AppendItems([]LineItem{item("Tea", "10", 1)}); !errors.Is(err, domain.ErrOrderClosed) {
			t.Fatalf("expected ErrOrderClosed, got %v", err)
		}
	})
}

func TestOrder_RemoveFirstNamed(t *testing.T) {
	newOrder := func() *Order {
		o, _ := NewOrder(uuid.New(), 1, "", []LineItem{
			item("A", "10", 1),
			item("B", "5", 2),
			item("A", "10", 1),
		})
		return o
	}

	t.Run("removes only the first match", func(t *testing.T) {
		o := newOrder()
		removed, err := o.RemoveFirstNamed("A")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if removed.Name != "A" {
			t.Fatalf("removed %q", removed.Name)
		}
		if len(o.Items) != 2 || o.Items[0].Name != "B" || o.Items[1].Name != "A" {
			t.Fatalf("unexpected items: %+v", o.Items)
		}
		if o.Total != money.MustParse("20") {
			t.Fatalf("expected 20.00, got %s", o.Total)
		}
		if err := o.CheckTotal(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		o := newOrder()
		_, err := o.RemoveFirstNamed("Z")
		if !errors.Is(err, domain.ErrItemNotInOrder) || !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrItemNotInOrder, got %v", err)
		}
		if len(o.Items) != 3 {
			t.Fatal("items changed")
		}
	})

	t.Run("name match is exact", func(t *testing.T) {
		o := newOrder()
		if _, err := o.RemoveFirstNamed("a"); !errors.Is(err, domain.ErrItemNotInOrder) {
			t.Fatalf("expected ErrItemNotInOrder, got %v", err)
		}
	})

	t.Run("removing the last item leaves an empty order", func(t *testing.T) {
		o, _ := NewOrder(uuid.New(), 1, "", []LineItem{item("A", "10", 1)})
		if _, err := o.RemoveFirstNamed("A"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(o.Items) != 0 || o.Total != 0 {
			t.Fatalf("expected empty order, got %+v total %s", o.Items, o.Total)
		}
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusReceived, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusServed, true},
		{StatusServed, StatusClosed, true},
		{StatusReceived, StatusClosed, true},
		{StatusReceived, StatusReady, false},
		{StatusReady, StatusPreparing, false},
		{StatusPreparing, StatusClosed, false},
		{StatusClosed, StatusReceived, false},
		{StatusServed, StatusServed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.TransitionTo(tt.to)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if o.Status != tt.from {
					t.Fatalf("status changed to %s", o.Status)
				}
			}
		})
	}
}

func TestOrder_Close(t *testing.T) {
	o := &Order{Status: StatusServed}
	closed, err := o.Close()
	if err != nil || !closed {
		t.Fatalf("expected first close to succeed, got %v, %v", closed, err)
	}
	closed, err = o.Close()
	if err != nil || closed {
		t.Fatalf("expected second close to be a no-op, got %v, %v", closed, err)
	}

	preparing := &Order{Status: StatusPreparing}
	if _, err := preparing.Close(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrder_CheckTotal(t *testing.T) {
	o := &Order{Items: []LineItem{item("Tea", "10", 2)}, Total: money.MustParse("20")}
	if err := o.CheckTotal(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o.Total++
	if err := o.CheckTotal(); !errors.Is(err, domain.ErrTotalOutOfSync) {
		t.Fatalf("expected ErrTotalOutOfSync, got %v", err)
	}
}

func TestNewAdditions(t *testing.T) {
	o, _ := NewOrder(uuid.New(), 7, "", []LineItem{item("Tea", "10", 1)})
	added := []LineItem{item("Vada", "8", 1), item("Chai", "6", 3)}

	adds := NewAdditions(o, added, o.CreatedAt)
	if len(adds) != 2 {
		t.Fatalf("expected 2 additions, got %d", len(adds))
	}
	for i, a := range adds {
		if a.Status != AdditionNew {
			t.Fatalf("addition %d has status %s", i, a.Status)
		}
		if a.OrderID != o.ID || a.RestaurantID != o.RestaurantID || a.TableNo != 7 {
			t.Fatalf("addition %d not tied to order: %+v", i, a)
		}
		if a.Item != added[i] {
			t.Fatalf("addition %d item %+v, want %+v", i, a.Item, added[i])
		}
	}
}
