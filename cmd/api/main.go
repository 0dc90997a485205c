package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dineqr/dineqr/pkg/app"
	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/cache"
	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/httpx"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/telemetry"
	"github.com/dineqr/dineqr/pkg/workflows"
	menuApi "github.com/dineqr/dineqr/services/menu/application/api"
	orderingApi "github.com/dineqr/dineqr/services/ordering/application/api"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting is optional: log and continue on failure.
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log, database.WithTxRetries(cfg.StorageMaxRetries))
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer temporalClient.Close()
	}

	sessionStore := auth.NewSessionStore(redisClient.Client(), auth.SessionOptions{
		AuthKey:       []byte(cfg.SessionAuthKey),
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		TTL:           cfg.SessionTTL,
		Secure:        cfg.Environment == config.EnvProduction,
	})
	log.Info("session store initialized", "backend", "redis")

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimit:          cfg.HTTPRateLimit,
			RequestTimeout:     cfg.HTTPRequestTimeout,
		},
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
		logger.Middleware(log),
	)

	checks := httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: eventBus,
	}
	if temporalClient != nil {
		checks.Temporal = temporalClient
	}
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r, cfg.HTTPRequestTimeout)
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
	if err := httpx.Run(runCtx, srv); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all bounded-context routes under /api.
func registerRoutes(r chi.Router, a *app.Application) {
	r.Post("/session/logout", func(w http.ResponseWriter, req *http.Request) {
		if err := auth.ClearSession(a.SessionStore, w, req); err != nil {
			a.Logger.WarnContext(req.Context(), "logout failed", "error", err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	menuApi.MenuRoutes(r, a)
	orderingApi.OrderingRoutes(r, a)
}
