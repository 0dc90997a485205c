package services

import (
	"github.com/dineqr/dineqr/pkg/app"
	"github.com/dineqr/dineqr/pkg/cache"
	"github.com/dineqr/dineqr/pkg/config"
	menusvcs "github.com/dineqr/dineqr/services/menu/application/services"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/infrastructure/menu"
	"github.com/dineqr/dineqr/services/ordering/infrastructure/persistence/postgres"
)

const (
	kitchenFeedPrefix   = "kitchen_feed"
	salesSnapshotPrefix = "daily_sales"
)

// Services is the application-layer service container for the ordering context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Order   *OrderService
	Kitchen *KitchenService
	Report  *ReportService
	Profile *ProfileService
}

// New wires all ordering application services with infrastructure from the
// Application container. Redis-backed pieces are skipped when a.Redis is nil.
func New(a *app.Application) *Services {
	cfg := a.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	orders := postgres.NewOrderRepository(a.Db, a.EventBus)
	additions := postgres.NewAdditionRepository(a.Db)
	restaurants := postgres.NewRestaurantRepository(a.Db)
	lookup := menu.NewLookup(menusvcs.New(a).Menu)

	var (
		locker    TableLocker
		feedCache KitchenFeedCache
		snapshots SalesSnapshotCache
	)
	if a.Redis != nil {
		locker = cache.NewTableLock(a.Redis, cfg.TableLockTTL)
		feedCache = cache.NewJSONCache[[]models.KitchenAddition](a.Redis, kitchenFeedPrefix, cfg.KitchenFeedTTL)
		snapshots = cache.NewJSONCache[[]models.DailySales](a.Redis, salesSnapshotPrefix, cache.SalesSnapshotTTL)
	}

	metrics, err := NewMetrics()
	if err != nil {
		a.Logger.Warn("ordering metrics disabled", "error", err)
		metrics = nil
	}

	kitchen := NewKitchenService(additions, feedCache, cfg.KitchenFeedLimit, a.Logger)
	return &Services{
		Order:   NewOrderService(orders, restaurants, lookup, locker, kitchen, metrics, a.Logger),
		Kitchen: kitchen,
		Report:  NewReportService(restaurants, snapshots, a.Logger),
		Profile: NewProfileService(restaurants, a.Logger),
	}
}
