package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/dineqr/dineqr/pkg/config"
)

const sentryFlushTimeout = 2 * time.Second

// SetupSentry initialises the Sentry SDK. An empty DSN leaves it disabled;
// every other helper here is then a no-op.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: cfg.SentrySampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

func SentryFlush() {
	sentry.Flush(sentryFlushTimeout)
}

// SentryMiddleware reports handler panics and re-panics so logger.Recovery
// still writes the 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true, WaitForDelivery: false}).Handle
}

// CaptureError reports err with tags such as topic or restaurant_id. Used
// for failures no caller will see, like dead-lettered events.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}
