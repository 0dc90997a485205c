// Package events carries domain events from repositories to subscribers
// through Postgres, using Watermill's SQL transport.
//
// Repositories publish with PublishTx inside their business transaction, so
// an event exists only if the write it describes committed. With a forwarder
// bus those rows go to an internal queue that StartForwarder relays to the
// real topics. Every subscriber of one service shares a consumer group, so an
// event is handled once per deployment, not once per process.
//
// Trace context travels in message metadata and is restored for handlers.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/logger"
)

const (
	outboxQueueTopic = "_outbox_queue"
	drainTimeout     = 30 * time.Second

	defaultHandlerAttempts = 3
	defaultRetryDelay      = time.Second
)

// Options tune delivery. Zero values fall back to the defaults above.
type Options struct {
	ConsumerGroup   string
	HandlerAttempts int
	RetryDelay      time.Duration
	// DeadLetterTopic receives messages whose handler kept failing. Empty
	// means they are nacked and redelivered instead.
	DeadLetterTopic string
}

func optionsFromConfig(cfg *config.Config) Options {
	o := Options{
		ConsumerGroup:   cfg.ServiceName + "-consumer",
		HandlerAttempts: cfg.EventHandlerAttempts,
		RetryDelay:      cfg.EventRetryDelay,
		DeadLetterTopic: cfg.EventDeadLetterTopic,
	}
	if o.HandlerAttempts <= 0 {
		o.HandlerAttempts = defaultHandlerAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	return o
}

// EventBus publishes and consumes domain events stored in Postgres.
type EventBus struct {
	db         *sql.DB
	publisher  message.Publisher
	subscriber message.Subscriber
	outbox     *forwarder.Forwarder
	forward    bool
	opts       Options
	log        logger.Logger
	wg         sync.WaitGroup
}

// NewEventBus returns a bus that publishes straight to topics. The worker
// uses it to subscribe.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return open(cfg, log, false)
}

// NewEventBusWithForwarder returns a bus whose publishes are queued in the
// outbox table until StartForwarder relays them. The API process uses it.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return open(cfg, log, true)
}

func open(cfg *config.Config, log logger.Logger, forward bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	bus := &EventBus{db: db, forward: forward, opts: optionsFromConfig(cfg), log: log}
	wlog := newWatermillLogger(log)

	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	bus.publisher = bus.envelope(pub)

	sub, err := bus.newSubscriber(bus.opts.ConsumerGroup)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, err
	}
	bus.subscriber = sub
	return bus, nil
}

func (q *EventBus) newSubscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, newWatermillLogger(q.log))
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber for %s: %w", group, err)
	}
	return sub, nil
}

// envelope routes pub through the outbox queue when the bus forwards.
func (q *EventBus) envelope(pub message.Publisher) message.Publisher {
	if !q.forward {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxQueueTopic})
}

// DB returns the connection the bus stores messages through.
func (q *EventBus) DB() *sql.DB {
	return q.db
}

// NewTxPublisher returns a publisher that writes inside tx. The schema is
// created when the bus opens, so it is not initialised again here.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter: watermillsql.DefaultPostgreSQLSchema{},
	}, newWatermillLogger(q.log))
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	return q.envelope(pub), nil
}

// Publish sends msgs to topic outside any business transaction, carrying
// the trace context of ctx.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops consuming, waits up to drainTimeout for running handlers,
// then closes the publisher and the database.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.outbox != nil {
		if err := q.outbox.Close(); err != nil {
			return fmt.Errorf("events: close outbox forwarder: %w", err)
		}
	}

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		q.log.Error("events: handlers still running after drain timeout", "timeout", drainTimeout)
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}
