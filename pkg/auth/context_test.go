package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithPrincipal_RestaurantIDFromCtx(t *testing.T) {
	restaurantID := uuid.New()
	ctx := WithPrincipal(context.Background(), Principal{RestaurantID: restaurantID, Role: RoleAdmin})

	got, err := RestaurantIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != restaurantID {
		t.Fatalf("expected %v, got %v", restaurantID, got)
	}

	p, ok := PrincipalFromCtx(ctx)
	if !ok || p.Role != RoleAdmin {
		t.Fatalf("expected admin principal, got %+v (ok=%v)", p, ok)
	}
}

func TestRestaurantIDFromCtx_EmptyContext(t *testing.T) {
	_, err := RestaurantIDFromCtx(context.Background())
	if !errors.Is(err, ErrRestaurantIDNotFound) {
		t.Fatalf("expected ErrRestaurantIDNotFound, got %v", err)
	}
}

func TestRestaurantIDFromCtx_Superadmin(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{Role: RoleSuperadmin})
	_, err := RestaurantIDFromCtx(ctx)
	if !errors.Is(err, ErrRestaurantIDNotFound) {
		t.Fatalf("expected ErrRestaurantIDNotFound for superadmin, got %v", err)
	}
}

func TestRestaurantIDFromCtx_Isolation(t *testing.T) {
	id1 := uuid.New()
	id2 := uuid.New()

	ctx1 := WithPrincipal(context.Background(), Principal{RestaurantID: id1, Role: RoleKitchen})
	ctx2 := WithPrincipal(context.Background(), Principal{RestaurantID: id2, Role: RoleKitchen})

	got1, _ := RestaurantIDFromCtx(ctx1)
	got2, _ := RestaurantIDFromCtx(ctx2)

	if got1 != id1 || got2 != id2 {
		t.Fatalf("contexts leaked: got %v and %v", got1, got2)
	}
}
