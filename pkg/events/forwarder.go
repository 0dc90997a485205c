package events

import (
	"context"
	"errors"
	"fmt"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
)

const outboxConsumerGroup = "outbox-forwarder"

var (
	errNotForwarding  = errors.New("events: bus was opened without a forwarder")
	errAlreadyStarted  = errors.New("events: outbox forwarder already started")
)

// StartForwarder relays queued outbox messages to their topics until ctx is
// cancelled or the bus closes. It returns once the relay is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.forward {
		return errNotForwarding
	}
	if q.outbox != nil {
		return errAlreadyStarted
	}

	queue, err := q.newSubscriber(outboxConsumerGroup)
	if err != nil {
		return err
	}
	wlog := newWatermillLogger(q.log)
	target, err := watermillsql.NewPublisher(q.db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
	if err != nil {
		_ = queue.Close()
		return fmt.Errorf("events: new outbox target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(queue, target, wlog, forwarder.Config{ForwarderTopic: outboxQueueTopic})
	if err != nil {
		_ = target.Close()
		_ = queue.Close()
		return fmt.Errorf("events: new outbox forwarder: %w", err)
	}
	q.outbox = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: outbox forwarder running")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: outbox forwarder stopped", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: outbox forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for outbox forwarder: %w", ctx.Err())
	}
}
