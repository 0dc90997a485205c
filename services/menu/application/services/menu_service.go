package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/dineqr/dineqr/pkg/cache"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/money"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	"github.com/dineqr/dineqr/services/menu/domain/models"
	"github.com/dineqr/dineqr/services/menu/domain/repositories"
	domainsvcs "github.com/dineqr/dineqr/services/menu/domain/services"
)

// MenuItemInput carries the editable fields of a menu item.
type MenuItemInput struct {
	Name     string
	Price    money.Money
	Category string
	ImageURL string
}

// MenuService manages a restaurant's menu.
// Event publishing is handled by the repository layer (outbox pattern).
// Single-item reads are served from Redis when available, because every
// admin add-item call resolves a menu item.
type MenuService struct {
	repo  repositories.MenuItemRepository
	cache *pkgcache.MenuItemCache
	log   logger.Logger
}

// NewMenuService returns a MenuService. menuCache may be nil.
func NewMenuService(repo repositories.MenuItemRepository, menuCache *pkgcache.MenuItemCache, log logger.Logger) *MenuService {
	return &MenuService{repo: repo, cache: menuCache, log: log}
}

// Create validates and persists a new available item.
func (s *MenuService) Create(ctx context.Context, restaurantID uuid.UUID, in MenuItemInput) (*models.MenuItem, error) {
	item, err := s.build(restaurantID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save menu item: %w", err)
	}
	return item, nil
}

func (s *MenuService) build(restaurantID uuid.UUID, in MenuItemInput) (*models.MenuItem, error) {
	name, err := models.NewItemName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuItem, err)
	}
	item, err := models.NewMenuItem(restaurantID, name, in.Price, in.Category)
	if err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	item.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := domainsvcs.ValidateMenuItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuItem, err)
	}
	return item, nil
}

// GetByID retrieves a MenuItem using a read-through cache:
//  1. Check Redis first.
//  2. On a miss (or cache error), query Postgres.
//  3. Warm the cache asynchronously with the Postgres result.
func (s *MenuService) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, restaurantID, id)
		if err == nil {
			return fromCached(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "menu cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, restaurantID, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	if s.cache != nil {
		go func() {
			if err := s.cache.Set(context.Background(), toCached(item)); err != nil {
				s.log.Warn("menu cache warm failed", "item_id", item.ID, "error", err)
			}
		}()
	}
	return item, nil
}

// List returns the full menu for the admin screen, newest first.
func (s *MenuService) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.MenuItem, error) {
	items, err := s.repo.List(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

// ListAvailable returns only the items customers can order.
func (s *MenuService) ListAvailable(ctx context.Context, restaurantID uuid.UUID) ([]*models.MenuItem, error) {
	items, err := s.List(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	out := items[:0:0]
	for _, it := range items {
		if it.Available {
			out = append(out, it)
		}
	}
	return out, nil
}

// PublicMenu returns the customer-facing menu for a restaurant subdomain.
func (s *MenuService) PublicMenu(ctx context.Context, subdomain string) (*models.PublicMenu, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, menudomain.ErrRestaurantNotFound
	}
	menu, err := s.repo.PublicMenu(ctx, subdomain)
	if err != nil {
		return nil, fmt.Errorf("public menu: %w", err)
	}
	return menu, nil
}

// Update replaces the editable fields of an item. Orders already placed keep
// the name and price they captured.
func (s *MenuService) Update(ctx context.Context, restaurantID, id uuid.UUID, in MenuItemInput) (*models.MenuItem, error) {
	current, err := s.repo.GetByID(ctx, restaurantID, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	next, err := s.build(restaurantID, in)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.Available = current.Available
	next.CreatedAt = current.CreatedAt
	if next.ImageURL == "" {
		next.ImageURL = current.ImageURL
	}

	if err := s.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	s.evict(ctx, restaurantID, id)
	return next, nil
}

// ToggleAvailability flips whether customers can order the item.
func (s *MenuService) ToggleAvailability(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.ToggleAvailability(ctx, restaurantID, id)
	if err != nil {
		return nil, fmt.Errorf("toggle menu item: %w", err)
	}
	s.evict(ctx, restaurantID, id)
	return item, nil
}

// Delete removes an item. Returns ErrMenuItemNotFound if it does not exist.
func (s *MenuService) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, restaurantID, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	s.evict(ctx, restaurantID, id)
	return nil
}

// ImportTemplate adds a starter menu at zero prices, skipping names the
// restaurant already has. Returns how many items were added.
func (s *MenuService) ImportTemplate(ctx context.Context, restaurantID uuid.UUID, template string) (int, error) {
	entries, ok := models.Templates[strings.ToLower(strings.TrimSpace(template))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", menudomain.ErrUnknownTemplate, template)
	}

	items := make([]*models.MenuItem, 0, len(entries))
	for _, e := range entries {
		item, err := s.build(restaurantID, MenuItemInput{Name: e.Name, Category: e.Category})
		if err != nil {
			return 0, err
		}
		items = append(items, item)
	}

	n, err := s.repo.SaveMany(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("import template: %w", err)
	}
	s.log.InfoContext(ctx, "menu template imported",
		"restaurant_id", restaurantID, "template", template, "added", n)
	return n, nil
}

func (s *MenuService) evict(ctx context.Context, restaurantID, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, restaurantID, id); err != nil {
		s.log.WarnContext(ctx, "menu cache evict failed", "item_id", id, "error", err)
	}
}

func toCached(item *models.MenuItem) *pkgcache.CachedMenuItem {
	return &pkgcache.CachedMenuItem{
		ID:           item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name.String(),
		Price:        item.Price.Paise(),
		Category:     item.Category,
		ImageURL:     item.ImageURL,
		Available:    item.Available,
		CreatedAt:    item.CreatedAt,
	}
}

func fromCached(c *pkgcache.CachedMenuItem) *models.MenuItem {
	return &models.MenuItem{
		ID:           c.ID,
		RestaurantID: c.RestaurantID,
		Name:         models.ItemName(c.Name),
		Price:        money.Money(c.Price),
		Category:     c.Category,
		ImageURL:     c.ImageURL,
		Available:    c.Available,
		CreatedAt:    c.CreatedAt,
	}
}
