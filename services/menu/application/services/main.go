package services

import (
	"github.com/dineqr/dineqr/pkg/app"
	"github.com/dineqr/dineqr/pkg/cache"
	"github.com/dineqr/dineqr/services/menu/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the menu context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Menu *MenuService
}

// New wires all menu application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewMenuItemRepository(a.Db, a.EventBus)
	var itemCache *cache.MenuItemCache
	if a.Redis != nil {
		itemCache = cache.NewMenuItemCache(a.Redis)
	}
	return &Services{
		Menu: NewMenuService(repo, itemCache, a.Logger),
	}
}
