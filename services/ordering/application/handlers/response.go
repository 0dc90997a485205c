package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// OrderResponse is the JSON shape of an order.
type OrderResponse struct {
	ID           uuid.UUID         `json:"id"`
	TableNo      int               `json:"table_no"`
	CustomerName string            `json:"customer_name,omitempty"`
	Items        []models.LineItem `json:"items"`
	Total        money.Money       `json:"total"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// AdditionResponse is one entry of the kitchen feed.
type AdditionResponse struct {
	ID        uuid.UUID   `json:"id"`
	OrderID   uuid.UUID   `json:"order_id"`
	TableNo   int         `json:"table_no"`
	ItemName  string      `json:"item_name"`
	Qty       int         `json:"qty"`
	Price     money.Money `json:"price"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrdersByDateResponse is the admin day view.
type OrdersByDateResponse struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Revenue money.Money     `json:"revenue"`
	Orders  []OrderResponse `json:"orders"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		TableNo:      o.TableNo,
		CustomerName: o.CustomerName,
		Items:        o.Items,
		Total:        o.Total,
		Status:       o.Status.String(),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toOrderResponses(orders []*models.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

func toAdditionResponses(adds []models.KitchenAddition) []AdditionResponse {
	out := make([]AdditionResponse, len(adds))
	for i, a := range adds {
		out[i] = AdditionResponse{
			ID:        a.ID,
			OrderID:   a.OrderID,
			TableNo:   a.TableNo,
			ItemName:  a.Item.Name,
			Qty:       a.Item.Qty,
			Price:     a.Item.Price,
			Status:    a.Status.String(),
			CreatedAt: a.CreatedAt,
		}
	}
	return out
}
