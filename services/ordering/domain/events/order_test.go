package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/services/ordering/domain/events"
)

func TestOrderPlacedEvent_JSONFieldNames(t *testing.T) {
	evt := events.OrderPlacedEvent{
		EventID:      uuid.New(),
		Version:      1,
		OrderID:      uuid.New(),
		RestaurantID: uuid.New(),
		TableNo:      4,
		Items:        []events.EventLine{{Name: "Tea", Price: 1000, Qty: 2}},
		Total:        2000,
		OccurredAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	for _, field := range []string{"event_id", "version", "order_id", "restaurant_id", "table_no", "items", "total", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
	if raw["total"] != 20.0 {
		t.Errorf("expected total 20.00 as a number, got %v", raw["total"])
	}
}

func TestAdditionCreatedEvent_JSONRoundTrip(t *testing.T) {
	original := events.AdditionCreatedEvent{
		EventID:      uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"),
		Version:      1,
		AdditionID:   uuid.MustParse("550e8400-e29b-41d4-a716-446655440002"),
		OrderID:      uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		RestaurantID: uuid.MustParse("660e8400-e29b-41d4-a716-446655440000"),
		TableNo:      9,
		Item:         events.EventLine{Name: "Vada", Price: 850, Qty: 1},
		OccurredAt:   time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	var decoded events.AdditionCreatedEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if decoded.AdditionID != original.AdditionID || decoded.Item != original.Item || decoded.TableNo != 9 {
		t.Errorf("got %+v, want %+v", decoded, original)
	}
	if !decoded.OccurredAt.Equal(original.OccurredAt) {
		t.Errorf("OccurredAt: got %v, want %v", decoded.OccurredAt, original.OccurredAt)
	}
}

func TestTopics_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for _, topic := range []string{
		events.TopicOrderPlaced,
		events.TopicAdditionCreated,
		events.TopicOrderClosed,
		events.TopicOrderStatusMoved,
	} {
		if topic == "" || seen[topic] {
			t.Fatalf("topic %q empty or duplicated", topic)
		}
		seen[topic] = true
	}
}
