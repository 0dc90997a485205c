package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	"github.com/dineqr/dineqr/services/menu/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain"
)

type stubGetter struct {
	item *models.MenuItem
	err  error
}

func (s stubGetter) GetByID(context.Context, uuid.UUID, uuid.UUID) (*models.MenuItem, error) {
	return s.item, s.err
}

func TestLookupMenuItem(t *testing.T) {
	item := &models.MenuItem{ID: uuid.New(), Name: "Tea", Price: 2000, Available: true}

	tests := []struct {
		name     string
		getter   stubGetter
		wantErr  error
		wantName string
	}{
		{"found", stubGetter{item: item}, nil, "Tea"},
		{"not found", stubGetter{err: menudomain.ErrMenuItemNotFound}, domain.ErrMenuItemNotFound, ""},
		{"storage", stubGetter{err: errors.New("connection reset")}, domain.ErrStorage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLookup(tt.getter).LookupMenuItem(context.Background(), uuid.New(), item.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.wantName || got.Price != item.Price || !got.Available {
				t.Fatalf("unexpected entry %+v", got)
			}
		})
	}
}
