package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dineqr/dineqr/pkg/logger"
)

// Metadata set on dead-lettered messages.
const (
	MetaDeadLetterTopic = "dead_letter_topic"
	MetaDeadLetterError = "dead_letter_error"
)

const errBuffer = 100

// Handler processes one message. Returning an error retries it.
type Handler func(context.Context, *message.Message) error

// Permanent marks a handler error that retrying cannot fix, such as a
// payload that does not decode. The message is given up on immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Subscribe consumes topic in the background. Each message runs handler
// with the publisher's trace restored, retried with exponential backoff.
// A message that still fails goes to the dead-letter topic and is acked, or
// is nacked when no dead-letter topic is configured; either way the error is
// sent on the returned channel, which callers must drain. The channel closes
// when the subscription ends.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	msgs, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errs := make(chan error, errBuffer)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errs)
		for msg := range msgs {
			if err := q.deliver(ctx, topic, msg, handler); err != nil {
				select {
				case errs <- err:
				default:
					q.log.ErrorContext(ctx, "events: error channel full", "topic", topic, "error", err)
				}
			}
		}
	}()
	return errs, nil
}

func (q *EventBus) deliver(ctx context.Context, topic string, msg *message.Message, handler Handler) error {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)

	err := retryHandler(msgCtx, msg, handler, q.opts.HandlerAttempts, q.opts.RetryDelay, q.log)
	if err == nil {
		msg.Ack()
		return nil
	}
	err = fmt.Errorf("events: %s message %s: %w", topic, msg.UUID, err)

	if q.opts.DeadLetterTopic == "" {
		msg.Nack()
		return err
	}
	if dlErr := q.deadLetter(msgCtx, topic, msg, err); dlErr != nil {
		msg.Nack()
		return fmt.Errorf("%w (dead-lettering failed: %v)", err, dlErr)
	}
	msg.Ack()
	return err
}

// retryHandler runs handler up to attempts times, doubling delay between
// tries. It stops early on success, a Permanent error, or ctx cancellation.
func retryHandler(ctx context.Context, msg *message.Message, handler Handler, attempts int, delay time.Duration, log logger.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	tries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		return struct{}{}, handler(ctx, msg)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WarnContext(ctx, "events: handler failed, retrying",
				"attempt", tries, "max_attempts", attempts, "next_delay", next, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("handler failed after %d attempt(s): %w", tries, err)
	}
	return nil
}

func (q *EventBus) deadLetter(ctx context.Context, topic string, msg *message.Message, cause error) error {
	dl := message.NewMessage(watermill.NewUUID(), msg.Payload)
	for k, v := range msg.Metadata {
		dl.Metadata.Set(k, v)
	}
	dl.Metadata.Set(MetaDeadLetterTopic, topic)
	dl.Metadata.Set(MetaDeadLetterError, cause.Error())

	if err := q.Publish(ctx, q.opts.DeadLetterTopic, dl); err != nil {
		return err
	}
	q.log.WarnContext(ctx, "events: message dead-lettered",
		"topic", topic, "dead_letter_topic", q.opts.DeadLetterTopic, "message_uuid", msg.UUID)
	return nil
}
