package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

func placeAndMerge(t *testing.T, svc *OrderService, restaurantID uuid.UUID, names ...string) []models.KitchenAddition {
	t.Helper()
	ctx := context.Background()
	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{RestaurantID: restaurantID, TableNo: 1, Items: []models.LineItem{line("Water", "0", 1)}})
	require.NoError(t, err)

	items := make([]models.LineItem, 0, len(names))
	for _, n := range names {
		items = append(items, line(n, "10", 1))
	}
	res, err := svc.PlaceOrder(ctx, PlaceOrderInput{RestaurantID: restaurantID, TableNo: 1, Items: items})
	require.NoError(t, err)
	return res.Additions
}

func TestKitchenService_ListNew(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	f := newOrderFixture()
	placeAndMerge(t, f.svc, restaurantID, "Idli", "Vada", "Pongal")
	placeAndMerge(t, f.svc, uuid.New(), "Other tenant")

	kitchen := NewKitchenService(f.repo, nil, 0, testLogger())
	adds, err := kitchen.ListNew(ctx, restaurantID, 0)
	require.NoError(t, err)
	require.Len(t, adds, 3)
	assert.Equal(t, "Idli", adds[0].Item.Name)
	assert.Equal(t, "Pongal", adds[2].Item.Name)
	assert.Less(t, adds[0].Seq, adds[1].Seq)

	adds, err = kitchen.ListNew(ctx, restaurantID, 2)
	require.NoError(t, err)
	assert.Len(t, adds, 2)

	empty, err := kitchen.ListNew(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestKitchenService_ListNew_CachesDefaultFeed(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	f := newOrderFixture()
	placeAndMerge(t, f.svc, restaurantID, "Idli")

	cache := newMemCache[[]models.KitchenAddition]()
	kitchen := NewKitchenService(f.repo, cache, 10, testLogger())

	_, err := kitchen.ListNew(ctx, restaurantID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = kitchen.ListNew(ctx, restaurantID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "second read is served from cache")

	_, err = kitchen.ListNew(ctx, restaurantID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "non-default limits bypass the cache")
	assert.Equal(t, 3, f.repo.lastLimit)

	require.NoError(t, cache.Delete(ctx, restaurantID.String()))
	_, err = kitchen.ListNew(ctx, restaurantID, 500)
	require.NoError(t, err)
	assert.Equal(t, 10, f.repo.lastLimit, "limit is capped at the configured maximum")
}

func TestKitchenService_Acknowledge(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	f := newOrderFixture()
	adds := placeAndMerge(t, f.svc, restaurantID, "Idli", "Vada")
	require.Len(t, adds, 2)

	cache := newMemCache[[]models.KitchenAddition]()
	kitchen := NewKitchenService(f.repo, cache, 0, testLogger())

	require.NoError(t, kitchen.Acknowledge(ctx, restaurantID, adds[0].ID))
	assert.Equal(t, []string{restaurantID.String()}, cache.deletes)

	remaining, err := kitchen.ListNew(ctx, restaurantID, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, adds[1].ID, remaining[0].ID)

	t.Run("acknowledging twice is harmless", func(t *testing.T) {
		assert.NoError(t, kitchen.Acknowledge(ctx, restaurantID, adds[0].ID))
	})

	t.Run("other tenant sees not found", func(t *testing.T) {
		err := kitchen.Acknowledge(ctx, uuid.New(), adds[1].ID)
		assert.ErrorIs(t, err, domain.ErrAdditionNotFound)

		still, err := kitchen.ListNew(ctx, restaurantID, 2)
		require.NoError(t, err)
		assert.Len(t, still, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, kitchen.Acknowledge(ctx, restaurantID, uuid.New()), domain.ErrAdditionNotFound)
	})
}
