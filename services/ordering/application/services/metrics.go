package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dineqr/dineqr/services/ordering"

var tracer trace.Tracer = otel.Tracer(instrumentationName)

// Metrics holds the ordering counters. A nil *Metrics records nothing.
type Metrics struct {
	ordersPlaced     metric.Int64Counter
	kitchenAdditions metric.Int64Counter
	billsClosed      metric.Int64Counter
}

// NewMetrics registers the ordering instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	ordersPlaced, err := meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Placement requests, split by whether they opened or merged an order"))
	if err != nil {
		return nil, err
	}
	kitchenAdditions, err := meter.Int64Counter("kitchen_additions_total",
		metric.WithDescription("Kitchen addition records created"))
	if err != nil {
		return nil, err
	}
	billsClosed, err := meter.Int64Counter("bills_closed_total",
		metric.WithDescription("Orders closed by billing"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersPlaced:     ordersPlaced,
		kitchenAdditions: kitchenAdditions,
		billsClosed:      billsClosed,
	}, nil
}

// RecordPlaced counts one placement. outcome is "created" or "merged".
func (m *Metrics) RecordPlaced(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordAdditions counts n addition records. source is "placement" or "admin".
func (m *Metrics) RecordAdditions(ctx context.Context, source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.kitchenAdditions.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordBillClosed counts one close transition.
func (m *Metrics) RecordBillClosed(ctx context.Context, scheme string) {
	if m == nil {
		return
	}
	m.billsClosed.Add(ctx, 1, metric.WithAttributes(attribute.String("scheme", scheme)))
}
