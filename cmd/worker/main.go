package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/dineqr/dineqr/pkg/app"
	"github.com/dineqr/dineqr/pkg/cache"
	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/mq"
	"github.com/dineqr/dineqr/pkg/telemetry"
	pkgworkflows "github.com/dineqr/dineqr/pkg/workflows"
	menuSubscribers "github.com/dineqr/dineqr/services/menu/application/subscribers"
	menuServices "github.com/dineqr/dineqr/services/menu/application/services"
	menuEvents "github.com/dineqr/dineqr/services/menu/domain/events"
	orderingServices "github.com/dineqr/dineqr/services/ordering/application/services"
	orderingSubscribers "github.com/dineqr/dineqr/services/ordering/application/subscribers"
	orderingWorkflows "github.com/dineqr/dineqr/services/ordering/application/workflows"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log, database.WithTxRetries(cfg.StorageMaxRetries))
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var temporalClient *pkgworkflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = pkgworkflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
	}

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
	}

	var broker *mq.Client
	if cfg.KitchenAMQPURL != "" {
		broker, err = mq.Dial(cfg.KitchenAMQPURL)
		if err != nil {
			log.Error("failed to connect to kitchen broker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer broker.Close() //nolint:errcheck
		if err := broker.DeclareTopic(mq.KitchenExchange); err != nil {
			log.Error("failed to declare kitchen exchange", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		log.Info("kitchen broker connected", "exchange", mq.KitchenExchange)
	}

	if err := registerSubscribers(ctx, appConfig, broker); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if temporalClient != nil {
		w := temporalClient.NewWorker(cfg.TemporalTaskQueue)
		orderingWorkflows.Register(w, &orderingWorkflows.Activities{
			Reports: orderingServices.New(appConfig).Report,
		})
		if err := w.Start(); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer w.Stop()

		if err := temporalClient.EnsureSchedule(ctx, orderingWorkflows.DailySalesSchedule(cfg.TemporalTaskQueue)); err != nil {
			log.Warn("daily sales schedule not created", "error", err)
		}
		log.Info("temporal worker started", "task_queue", cfg.TemporalTaskQueue)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers. The kitchen fan-out
// is only registered when a broker is configured.
func registerSubscribers(ctx context.Context, a *app.Application, broker *mq.Client) error {
	menuSync := menuSubscribers.NewCacheSync(
		menuServices.New(a).Menu,
		cache.NewMenuItemCache(a.Redis),
		a.Logger,
	)
	handlers := map[string]func(context.Context, *message.Message) error{
		menuEvents.TopicMenuItemCreated: menuSync.HandleCreated,
		menuEvents.TopicMenuItemChanged: menuSync.HandleChanged,
	}

	if broker != nil {
		fanout := orderingSubscribers.NewKitchenFanout(broker, mq.KitchenExchange, a.Logger)
		for _, topic := range orderingSubscribers.KitchenTopics {
			handlers[topic] = fanout.Handler(topic)
		}
	}

	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		if err := subscribe(ctx, a, topic, h); err != nil {
			return err
		}
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

func subscribe(ctx context.Context, a *app.Application, topic string, h func(context.Context, *message.Message) error) error {
	errCh, err := a.EventBus.Subscribe(ctx, topic, h)
	if err != nil {
		return err
	}

	// Drain subscriber errors in background so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			telemetry.CaptureError(ctx, err, map[string]string{"topic": topic})
		}
	}()
	return nil
}
