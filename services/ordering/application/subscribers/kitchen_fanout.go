// Package subscribers relays ordering events from the outbox to the kitchen broker.
package subscribers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/logger"
	orderevents "github.com/dineqr/dineqr/services/ordering/domain/events"
)

// KitchenTopics are the ordering topics kitchen displays care about.
var KitchenTopics = []string{
	orderevents.TopicOrderPlaced,
	orderevents.TopicAdditionCreated,
	orderevents.TopicOrderStatusMoved,
	orderevents.TopicOrderClosed,
}

// Publisher sends a message to a broker exchange. *mq.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers map[string]any) error
}

// KitchenFanout forwards ordering events to a topic exchange, keyed by restaurant.
type KitchenFanout struct {
	pub      Publisher
	exchange string
	log      logger.Logger
}

// NewKitchenFanout returns a KitchenFanout publishing to exchange.
func NewKitchenFanout(pub Publisher, exchange string, log logger.Logger) *KitchenFanout {
	return &KitchenFanout{pub: pub, exchange: exchange, log: log}
}

// RoutingKey builds "kitchen.<restaurant_id>.<event>" from an ordering topic.
func RoutingKey(restaurantID uuid.UUID, topic string) string {
	return "kitchen." + restaurantID.String() + "." + strings.TrimPrefix(topic, "ordering.")
}

type tenantEnvelope struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
}

// Handler returns the EventBus handler for topic. The payload is forwarded
// unchanged; a publish failure is returned so the EventBus retries it.
func (f *KitchenFanout) Handler(topic string) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		env, err := events.DecodeJSON[tenantEnvelope](msg)
		if err != nil {
			return events.Permanent(fmt.Errorf("decode %s: %w", topic, err))
		}
		if env.RestaurantID == uuid.Nil {
			f.log.WarnContext(ctx, "dropping kitchen event without restaurant", "topic", topic, "message_uuid", msg.UUID)
			return nil
		}

		key := RoutingKey(env.RestaurantID, topic)
		headers := map[string]any{
			events.MetaEventID:      msg.Metadata.Get(events.MetaEventID),
			events.MetaEventVersion: msg.Metadata.Get(events.MetaEventVersion),
			events.MetaTopic:        topic,
		}
		if err := f.pub.Publish(ctx, f.exchange, key, msg.Payload, headers); err != nil {
			return fmt.Errorf("forward %s: %w", topic, err)
		}
		f.log.DebugContext(ctx, "kitchen event forwarded", "routing_key", key)
		return nil
	}
}
