package domain

import (
	"errors"
	"fmt"
)

// Error kinds for the ordering context. Every specific sentinel below wraps
// exactly one kind, so callers can branch on either:
//
//	errors.Is(err, domain.ErrOrderNotFound) // the specific case
//	errors.Is(err, domain.ErrNotFound)      // the kind
var (
	// ErrValidation covers malformed or out-of-range input. Terminal, never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers records that do not exist or belong to another restaurant.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a concurrent write detected by storage, such as a
	// second open order being inserted for the same table.
	ErrConflict = errors.New("conflict")

	// ErrStorage is a transient storage failure that outlived its retries.
	ErrStorage = errors.New("storage failure")
)

// Specific sentinels.
var (
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrMenuItemNotFound  = fmt.Errorf("menu item %w", ErrNotFound)
	ErrAdditionNotFound  = fmt.Errorf("kitchen addition %w", ErrNotFound)
	ErrItemNotInOrder    = fmt.Errorf("item %w", ErrNotFound)
	ErrRestaurantMissing = fmt.Errorf("restaurant %w", ErrNotFound)

	ErrNoItems              = fmt.Errorf("%w: at least one item is required", ErrValidation)
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	ErrInvalidPrice         = fmt.Errorf("%w: price must be a non-negative amount", ErrValidation)
	ErrAmountTooLarge       = fmt.Errorf("%w: amount exceeds the supported maximum", ErrValidation)
	ErrInvalidItemName      = fmt.Errorf("%w: invalid item name", ErrValidation)
	ErrInvalidTable         = fmt.Errorf("%w: table number must be positive", ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidTransition    = fmt.Errorf("%w: illegal status transition", ErrValidation)
	ErrOrderClosed          = fmt.Errorf("%w: order is closed", ErrValidation)
	ErrInvalidTaxScheme     = fmt.Errorf("%w: unknown tax scheme", ErrValidation)
	ErrMenuItemUnavailable  = fmt.Errorf("%w: menu item is not available", ErrValidation)
	ErrMissingRestaurantID  = fmt.Errorf("%w: restaurant id is required", ErrValidation)
	ErrInvalidProfile       = fmt.Errorf("%w: invalid restaurant profile", ErrValidation)
	ErrOpenOrderExists      = fmt.Errorf("open order already exists for table: %w", ErrConflict)
	ErrConcurrentUpdate     = fmt.Errorf("order was modified concurrently: %w", ErrConflict)
	ErrTotalOutOfSync       = errors.New("order total does not match its items")
)

// Kind names returned to clients.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindStorage    = "storage"
	KindInternal   = "internal"
)

// KindOf classifies err into one of the Kind* names.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindInternal
	}
}
