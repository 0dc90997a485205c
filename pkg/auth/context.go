package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// Role names stored in the session.
const (
	RoleAdmin      = "admin"
	RoleKitchen    = "kitchen"
	RoleSuperadmin = "superadmin"
)

// ErrRestaurantIDNotFound is returned when no restaurant is bound to the
// request context. Handlers should return 401 when this error occurs.
var ErrRestaurantIDNotFound = errors.New("restaurant_id not found in context")

// Principal is the authenticated staff member behind a request.
// RestaurantID is uuid.Nil for superadmins, who are not bound to a tenant.
type Principal struct {
	RestaurantID uuid.UUID
	Role         string
}

// WithPrincipal returns a new context carrying p.
// Used by authentication middleware after validating the session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx returns the principal set by RequireAuth, if any.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RestaurantIDFromCtx extracts the authenticated tenant from the request context.
// Returns uuid.Nil and ErrRestaurantIDNotFound for unauthenticated requests
// and for superadmins.
func RestaurantIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	p, ok := PrincipalFromCtx(ctx)
	if !ok || p.RestaurantID == uuid.Nil {
		return uuid.Nil, ErrRestaurantIDNotFound
	}
	return p.RestaurantID, nil
}
