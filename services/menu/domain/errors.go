package domain

import "errors"

// Sentinel errors for the menu domain. Use errors.Is() to check these.
var (
	// ErrMenuItemNotFound indicates the item does not exist for the restaurant.
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrMenuItemExists indicates the restaurant already has an item with that name.
	ErrMenuItemExists = errors.New("menu item already exists")

	// ErrInvalidMenuItem indicates a name, price or category violates domain constraints.
	ErrInvalidMenuItem = errors.New("invalid menu item")

	// ErrUnknownTemplate indicates the requested starter menu does not exist.
	ErrUnknownTemplate = errors.New("unknown menu template")

	// ErrRestaurantNotFound indicates no restaurant is registered under the subdomain.
	ErrRestaurantNotFound = errors.New("restaurant not found")
)
