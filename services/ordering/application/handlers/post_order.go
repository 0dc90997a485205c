package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	"github.com/dineqr/dineqr/pkg/money"
	pkgvalidator "github.com/dineqr/dineqr/pkg/validator"
	appsvcs "github.com/dineqr/dineqr/services/ordering/application/services"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// OrderLineRequest is one item in a placement.
type OrderLineRequest struct {
	Name  string      `json:"name"  validate:"required,notblank,max=255"`
	Price money.Money `json:"price" validate:"gte=0"`
	Qty   int         `json:"qty"   validate:"gt=0,max=1000"`
}

// PlaceOrderRequest is the request body for POST /public/restaurants/{restaurant}/orders.
type PlaceOrderRequest struct {
	TableNo      int                `json:"table_no"      validate:"required,gt=0"`
	CustomerName string             `json:"customer_name" validate:"max=100"`
	Items        []OrderLineRequest `json:"items"         validate:"required,min=1,dive"`
}

// PlaceOrderResponse reports where the items went.
type PlaceOrderResponse struct {
	OrderID   uuid.UUID   `json:"order_id"`
	Created   bool        `json:"created"`
	Total     money.Money `json:"total"`
	Additions int         `json:"additions"`
}

// PostOrderHandler handles customer placements from the table QR page.
type PostOrderHandler struct {
	svc *appsvcs.Services
}

// NewPostOrderHandler returns a PostOrderHandler backed by the given services.
func NewPostOrderHandler(svc *appsvcs.Services) *PostOrderHandler {
	return &PostOrderHandler{svc: svc}
}

// Execute opens an order for the table or merges into its open one.
// Responds 201 when a new order was opened and 200 on a merge.
func (h *PostOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := httpx.UUIDParam(r, "restaurant")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, ok := pkgvalidator.ValidateRequest[PlaceOrderRequest](w, r)
	if !ok {
		return
	}

	items := make([]models.LineItem, len(req.Items))
	for i, li := range req.Items {
		items[i] = models.LineItem{Name: li.Name, Price: li.Price, Qty: li.Qty}
	}

	res, err := h.svc.Order.PlaceOrder(r.Context(), appsvcs.PlaceOrderInput{
		RestaurantID: restaurantID,
		TableNo:      req.TableNo,
		CustomerName: req.CustomerName,
		Items:        items,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, PlaceOrderResponse{
		OrderID:   res.Order.ID,
		Created:   res.Created,
		Total:     res.Order.Total,
		Additions: len(res.Additions),
	})
}
