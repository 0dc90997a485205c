// Package services contains stateless domain services for the menu bounded context.
package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/services/menu/domain/models"
)

const maxCategoryRunes = 60

// ValidateName enforces the rules that keep item names printable on
// thermal receipts:
//   - No control characters
//   - No consecutive spaces
func ValidateName(name models.ItemName) error {
	s := name.String()
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}
	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}
	return nil
}

// ValidateMenuItem performs cross-field validation before an item is persisted.
func ValidateMenuItem(item *models.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item cannot be nil")
	}
	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if item.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if utf8.RuneCountInString(item.Category) > maxCategoryRunes {
		return fmt.Errorf("category must not exceed %d characters", maxCategoryRunes)
	}
	if item.RestaurantID == uuid.Nil {
		return fmt.Errorf("restaurant_id must be set")
	}
	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}
	return nil
}
