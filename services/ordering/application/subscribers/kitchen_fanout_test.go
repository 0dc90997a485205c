package subscribers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/logger"
	orderevents "github.com/dineqr/dineqr/services/ordering/domain/events"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, exchange, key string, body []byte, headers map[string]any) error {
	return m.Called(ctx, exchange, key, body, headers).Error(0)
}

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func TestRoutingKey(t *testing.T) {
	rid := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	tests := []struct {
		topic string
		want  string
	}{
		{orderevents.TopicAdditionCreated, "kitchen.550e8400-e29b-41d4-a716-446655440000.addition_created"},
		{orderevents.TopicOrderPlaced, "kitchen.550e8400-e29b-41d4-a716-446655440000.order_placed"},
		{"custom", "kitchen.550e8400-e29b-41d4-a716-446655440000.custom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoutingKey(rid, tt.topic))
	}
}

func TestKitchenFanout_ForwardsPayload(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	evt := orderevents.AdditionCreatedEvent{
		EventID:      eventID,
		Version:      1,
		AdditionID:   uuid.New(),
		OrderID:      uuid.New(),
		RestaurantID: uuid.New(),
		TableNo:      3,
		Item:         orderevents.EventLine{Name: "Tea", Price: 1000, Qty: 1},
	}
	msg, err := events.NewJSONMessage(ctx, orderevents.TopicAdditionCreated, eventID, 1, evt)
	require.NoError(t, err)

	pub := new(publisherMock)
	pub.On("Publish", ctx, "kitchen_topic", RoutingKey(evt.RestaurantID, orderevents.TopicAdditionCreated), []byte(msg.Payload),
		mock.MatchedBy(func(h map[string]any) bool {
			return h[events.MetaEventID] == eventID.String() && h[events.MetaTopic] == orderevents.TopicAdditionCreated
		})).Return(nil)

	f := NewKitchenFanout(pub, "kitchen_topic", testLogger())
	require.NoError(t, f.Handler(orderevents.TopicAdditionCreated)(ctx, msg))
	pub.AssertExpectations(t)
}

func TestKitchenFanout_PublishFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	msg, err := events.NewJSONMessage(ctx, orderevents.TopicOrderClosed, uuid.New(), 1,
		orderevents.OrderClosedEvent{RestaurantID: uuid.New(), OrderID: uuid.New()})
	require.NoError(t, err)

	pub := new(publisherMock)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nacked"))

	f := NewKitchenFanout(pub, "kitchen_topic", testLogger())
	assert.Error(t, f.Handler(orderevents.TopicOrderClosed)(ctx, msg))
}

func TestKitchenFanout_DropsEventWithoutTenant(t *testing.T) {
	ctx := context.Background()
	msg, err := events.NewJSONMessage(ctx, orderevents.TopicOrderPlaced, uuid.New(), 1, map[string]string{"order_id": "x"})
	require.NoError(t, err)

	pub := new(publisherMock)
	f := NewKitchenFanout(pub, "kitchen_topic", testLogger())
	require.NoError(t, f.Handler(orderevents.TopicOrderPlaced)(ctx, msg))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestKitchenFanout_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	msg, err := events.NewJSONMessage(ctx, orderevents.TopicOrderPlaced, uuid.New(), 1, "not an object")
	require.NoError(t, err)

	f := NewKitchenFanout(new(publisherMock), "kitchen_topic", testLogger())
	assert.Error(t, f.Handler(orderevents.TopicOrderPlaced)(ctx, msg))
}
