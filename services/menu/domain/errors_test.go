package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrMenuItemNotFound, "menu item not found"},
		{ErrMenuItemExists, "menu item already exists"},
		{ErrInvalidMenuItem, "invalid menu item"},
		{ErrUnknownTemplate, "unknown menu template"},
		{ErrRestaurantNotFound, "restaurant not found"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Fatalf("unexpected message: %q", tt.err.Error())
		}
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("get menu item: %w", ErrMenuItemNotFound)
	if !errors.Is(wrapped, ErrMenuItemNotFound) {
		t.Fatal("errors.Is must match wrapped ErrMenuItemNotFound")
	}

	wrapped2 := fmt.Errorf("%w: %w", ErrInvalidMenuItem, errors.New("too long"))
	if !errors.Is(wrapped2, ErrInvalidMenuItem) {
		t.Fatal("errors.Is must match double-wrapped ErrInvalidMenuItem")
	}
}
