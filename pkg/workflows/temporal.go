// Package workflows connects to Temporal, which runs the scheduled daily
// sales rebuild. Workflow and activity definitions live with the bounded
// context that owns them.
package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/logger"
)

// TemporalClient is the process-wide Temporal connection.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	log       logger.Logger
}

// NewTemporalClient dials TEMPORAL_HOST_PORT. Workflow and activity spans
// join the caller's trace through the OTel interceptor, and SDK logs go
// through log tagged component=temporal.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("dineqr/temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}

	log = log.With("component", "temporal")
	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     cfg.ServiceName + "@" + cfg.ServiceVersion,
		Logger:       temporallog.NewStructuredLogger(log.ToSlog()),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal at %s: %w", cfg.TemporalHostPort, err)
	}

	log.Info("temporal client connected", "host_port", cfg.TemporalHostPort, "namespace", cfg.TemporalNamespace)
	return &TemporalClient{Client: c, Namespace: cfg.TemporalNamespace, log: log}, nil
}

// Ping asks the frontend service for its health.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}
