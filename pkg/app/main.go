package app

import (
	"github.com/gorilla/sessions"

	"github.com/dineqr/dineqr/pkg/cache"
	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all bounded contexts.
// Pass it to every context's route and service constructors during startup.
//
// Logging: app.Logger is backed by a trace-aware handler. Use the context methods
// so trace_id, span_id and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "order opened", "order_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient        // nil disables caches and the table lock
	TemporalClient *workflows.TemporalClient // nil when TEMPORAL_ENABLED is false
	SessionStore   sessions.Store            // Redis-backed session store; nil in worker process
}
