package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ItemName is the display name of a menu item, trimmed, 1 to 120 characters.
// Orders copy it verbatim, so it is also what the kitchen and the bill show.
type ItemName string

const maxItemNameRunes = 120

// NewItemName trims s and checks its length in characters.
func NewItemName(s string) (ItemName, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return "", fmt.Errorf("item name is required")
	case n > maxItemNameRunes:
		return "", fmt.Errorf("item name must not exceed %d characters", maxItemNameRunes)
	}
	return ItemName(s), nil
}

func (n ItemName) String() string {
	return string(n)
}
