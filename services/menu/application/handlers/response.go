package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/menu/domain/models"
)

// MenuItemResponse is the JSON shape of one menu item.
type MenuItemResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Price     money.Money `json:"price"`
	Category  string      `json:"category"`
	ImageURL  string      `json:"image_url,omitempty"`
	Available bool        `json:"available"`
	CreatedAt time.Time   `json:"created_at"`
}

// PublicMenuResponse is returned to customers browsing a restaurant's menu.
type PublicMenuResponse struct {
	RestaurantID   uuid.UUID          `json:"restaurant_id"`
	RestaurantName string             `json:"restaurant_name"`
	Items          []MenuItemResponse `json:"items"`
}

func toResponse(item *models.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:        item.ID,
		Name:      item.Name.String(),
		Price:     item.Price,
		Category:  item.Category,
		ImageURL:  item.ImageURL,
		Available: item.Available,
		CreatedAt: item.CreatedAt,
	}
}

func toResponses(items []*models.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, len(items))
	for i, item := range items {
		out[i] = toResponse(item)
	}
	return out
}
