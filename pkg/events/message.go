package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys set on every domain event message.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
	MetaTopic        = "topic"
)

// NewJSONMessage encodes event as a Watermill message carrying its event id,
// schema version, topic and the OTel trace context of ctx.
func NewJSONMessage(ctx context.Context, topic string, eventID uuid.UUID, version int, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetaEventID, eventID.String())
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(version))
	msg.Metadata.Set(MetaTopic, topic)

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

// DecodeJSON unmarshals a message payload into T.
func DecodeJSON[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode message %s: %w", msg.UUID, err)
	}
	return v, nil
}

// PublishTx publishes event on topic inside tx, so the event is stored if
// and only if the surrounding business write commits.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, version int, event any) error {
	msg, err := NewJSONMessage(ctx, topic, eventID, version, event)
	if err != nil {
		return err
	}
	p, err := q.NewTxPublisher(tx)
	if err != nil {
		return err
	}
	if err := p.Publish(topic, msg); err != nil {
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}
