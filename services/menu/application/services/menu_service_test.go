package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/money"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	"github.com/dineqr/dineqr/services/menu/domain/models"
)

// -- Mocks --

type menuRepoMock struct {
	mock.Mock
}

func (m *menuRepoMock) Save(ctx context.Context, item *models.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *menuRepoMock) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

func (m *menuRepoMock) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.MenuItem, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]*models.MenuItem), args.Error(1)
}

func (m *menuRepoMock) PublicMenu(ctx context.Context, subdomain string) (*models.PublicMenu, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicMenu), args.Error(1)
}

func (m *menuRepoMock) Update(ctx context.Context, item *models.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *menuRepoMock) ToggleAvailability(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

func (m *menuRepoMock) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return m.Called(ctx, restaurantID, id).Error(0)
}

func (m *menuRepoMock) SaveMany(ctx context.Context, items []*models.MenuItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func newTestService(repo *menuRepoMock) *MenuService {
	return NewMenuService(repo, nil, logger.New(&config.Config{LogLevel: "error"}))
}

func TestMenuService_Create(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()

	t.Run("persists trimmed item with default category", func(t *testing.T) {
		repo := new(menuRepoMock)
		repo.On("Save", ctx, mock.AnythingOfType("*models.MenuItem")).Return(nil)
		svc := newTestService(repo)

		item, err := svc.Create(ctx, restaurantID, MenuItemInput{Name: "  Masala Dosa ", Price: money.MustParse("120")})
		require.NoError(t, err)
		assert.Equal(t, "Masala Dosa", item.Name.String())
		assert.Equal(t, models.DefaultCategory, item.Category)
		assert.Equal(t, money.Money(12000), item.Price)
		assert.True(t, item.Available)
		repo.AssertExpectations(t)
	})

	t.Run("rejects blank name without touching storage", func(t *testing.T) {
		repo := new(menuRepoMock)
		svc := newTestService(repo)

		_, err := svc.Create(ctx, restaurantID, MenuItemInput{Name: "   "})
		assert.ErrorIs(t, err, menudomain.ErrInvalidMenuItem)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("surfaces duplicate names", func(t *testing.T) {
		repo := new(menuRepoMock)
		repo.On("Save", ctx, mock.Anything).Return(menudomain.ErrMenuItemExists)
		svc := newTestService(repo)

		_, err := svc.Create(ctx, restaurantID, MenuItemInput{Name: "Tea", Price: 1000})
		assert.ErrorIs(t, err, menudomain.ErrMenuItemExists)
	})
}

func TestMenuService_ListAvailable(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	tea := &models.MenuItem{ID: uuid.New(), Name: "Tea", Available: true}
	soup := &models.MenuItem{ID: uuid.New(), Name: "Soup", Available: false}

	repo := new(menuRepoMock)
	repo.On("List", ctx, restaurantID).Return([]*models.MenuItem{tea, soup}, nil)
	svc := newTestService(repo)

	items, err := svc.ListAvailable(ctx, restaurantID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, tea.ID, items[0].ID)
}

func TestMenuService_Update_KeepsAvailabilityAndImage(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	current := &models.MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         "Tea",
		Price:        1000,
		Category:     "Beverages",
		ImageURL:     "https://img.example/tea.png",
		Available:    false,
	}

	repo := new(menuRepoMock)
	repo.On("GetByID", ctx, restaurantID, current.ID).Return(current, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*models.MenuItem")).Return(nil)
	svc := newTestService(repo)

	got, err := svc.Update(ctx, restaurantID, current.ID, MenuItemInput{Name: "Ginger Tea", Price: 1500, Category: "Beverages"})
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)
	assert.Equal(t, "Ginger Tea", got.Name.String())
	assert.False(t, got.Available)
	assert.Equal(t, current.ImageURL, got.ImageURL)
}

func TestMenuService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	restaurantID, id := uuid.New(), uuid.New()

	repo := new(menuRepoMock)
	repo.On("GetByID", ctx, restaurantID, id).Return(nil, menudomain.ErrMenuItemNotFound)
	svc := newTestService(repo)

	_, err := svc.Update(ctx, restaurantID, id, MenuItemInput{Name: "Tea"})
	assert.ErrorIs(t, err, menudomain.ErrMenuItemNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMenuService_ImportTemplate(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()

	t.Run("known template", func(t *testing.T) {
		repo := new(menuRepoMock)
		repo.On("SaveMany", ctx, mock.MatchedBy(func(items []*models.MenuItem) bool {
			if len(items) != len(models.Templates["cafe"]) {
				return false
			}
			for _, it := range items {
				if it.Price != 0 || it.RestaurantID != restaurantID {
					return false
				}
			}
			return true
		})).Return(7, nil)
		svc := newTestService(repo)

		n, err := svc.ImportTemplate(ctx, restaurantID, " Cafe ")
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		repo.AssertExpectations(t)
	})

	t.Run("unknown template", func(t *testing.T) {
		repo := new(menuRepoMock)
		svc := newTestService(repo)

		_, err := svc.ImportTemplate(ctx, restaurantID, "bar")
		assert.ErrorIs(t, err, menudomain.ErrUnknownTemplate)
	})
}

func TestMenuService_PublicMenu_BlankSubdomain(t *testing.T) {
	repo := new(menuRepoMock)
	svc := newTestService(repo)

	_, err := svc.PublicMenu(context.Background(), "  ")
	assert.ErrorIs(t, err, menudomain.ErrRestaurantNotFound)
	repo.AssertNotCalled(t, "PublicMenu", mock.Anything, mock.Anything)
}

func TestMenuService_Delete(t *testing.T) {
	ctx := context.Background()
	restaurantID, id := uuid.New(), uuid.New()

	repo := new(menuRepoMock)
	repo.On("Delete", ctx, restaurantID, id).Return(menudomain.ErrMenuItemNotFound)
	svc := newTestService(repo)

	assert.ErrorIs(t, svc.Delete(ctx, restaurantID, id), menudomain.ErrMenuItemNotFound)
}
