package subscribers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/events"
	"github.com/dineqr/dineqr/pkg/logger"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	menuevents "github.com/dineqr/dineqr/services/menu/domain/events"
	"github.com/dineqr/dineqr/services/menu/domain/models"
)

type readerMock struct{ mock.Mock }

func (m *readerMock) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

type evicterMock struct{ mock.Mock }

func (m *evicterMock) Delete(ctx context.Context, restaurantID, itemID uuid.UUID) error {
	return m.Called(ctx, restaurantID, itemID).Error(0)
}

func newSync(r *readerMock, e *evicterMock) *CacheSync {
	return NewCacheSync(r, e, logger.New(&config.Config{LogLevel: "error"}))
}

func TestCacheSync_HandleCreated(t *testing.T) {
	ctx := context.Background()
	evt := menuevents.MenuItemCreatedEvent{EventID: uuid.New(), ItemID: uuid.New(), RestaurantID: uuid.New(), Name: "Tea"}
	msg, err := events.NewJSONMessage(ctx, menuevents.TopicMenuItemCreated, evt.EventID, 1, evt)
	require.NoError(t, err)

	t.Run("warms through the reader", func(t *testing.T) {
		r, e := new(readerMock), new(evicterMock)
		r.On("GetByID", ctx, evt.RestaurantID, evt.ItemID).Return(&models.MenuItem{ID: evt.ItemID}, nil)
		require.NoError(t, newSync(r, e).HandleCreated(ctx, msg))
		r.AssertExpectations(t)
	})

	t.Run("item already deleted", func(t *testing.T) {
		r, e := new(readerMock), new(evicterMock)
		r.On("GetByID", ctx, evt.RestaurantID, evt.ItemID).Return(nil, menudomain.ErrMenuItemNotFound)
		assert.NoError(t, newSync(r, e).HandleCreated(ctx, msg))
	})
}

func TestCacheSync_HandleChanged(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		deleted  bool
		evictErr error
		wantRead bool
	}{
		{"edited item is reloaded", false, nil, true},
		{"deleted item is only evicted", true, nil, false},
		{"evict failure skips reload", false, errors.New("redis down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := menuevents.MenuItemChangedEvent{EventID: uuid.New(), ItemID: uuid.New(), RestaurantID: uuid.New(), Deleted: tt.deleted}
			msg, err := events.NewJSONMessage(ctx, menuevents.TopicMenuItemChanged, evt.EventID, 1, evt)
			require.NoError(t, err)

			r, e := new(readerMock), new(evicterMock)
			e.On("Delete", ctx, evt.RestaurantID, evt.ItemID).Return(tt.evictErr)
			if tt.wantRead {
				r.On("GetByID", ctx, evt.RestaurantID, evt.ItemID).Return(&models.MenuItem{ID: evt.ItemID}, nil)
			}

			require.NoError(t, newSync(r, e).HandleChanged(ctx, msg))
			e.AssertExpectations(t)
			if tt.wantRead {
				r.AssertExpectations(t)
			} else {
				r.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
