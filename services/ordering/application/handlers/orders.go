package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	pkgvalidator "github.com/dineqr/dineqr/pkg/validator"
	appsvcs "github.com/dineqr/dineqr/services/ordering/application/services"
)

// ListOrdersHandler handles GET /orders?limit=.
type ListOrdersHandler struct {
	svc *appsvcs.Services
}

// NewListOrdersHandler returns a ListOrdersHandler backed by the given services.
func NewListOrdersHandler(svc *appsvcs.Services) *ListOrdersHandler {
	return &ListOrdersHandler{svc: svc}
}

// Execute returns the newest orders, newest first.
func (h *ListOrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	limit, err := httpx.IntQuery(r, "limit", appsvcs.DefaultRecentLimit)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := h.svc.Order.ListRecent(r.Context(), restaurantID, limit)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponses(orders))
}

// OrdersByDateHandler handles GET /orders/by-date?date=YYYY-MM-DD.
// A missing date means today in UTC.
type OrdersByDateHandler struct {
	svc *appsvcs.Services
}

// NewOrdersByDateHandler returns an OrdersByDateHandler backed by the given services.
func NewOrdersByDateHandler(svc *appsvcs.Services) *OrdersByDateHandler {
	return &OrdersByDateHandler{svc: svc}
}

// Execute returns the day's orders with their count and revenue.
func (h *OrdersByDateHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format(time.DateOnly)
	}

	day, err := h.svc.Order.OrdersByDate(r.Context(), restaurantID, date)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, OrdersByDateResponse{
		Date:    day.Date,
		Count:   day.Count,
		Revenue: day.Revenue,
		Orders:  toOrderResponses(day.Orders),
	})
}

// GetOrderHandler handles GET /orders/{id}.
type GetOrderHandler struct {
	svc *appsvcs.Services
}

// NewGetOrderHandler returns a GetOrderHandler backed by the given services.
func NewGetOrderHandler(svc *appsvcs.Services) *GetOrderHandler {
	return &GetOrderHandler{svc: svc}
}

// Execute returns one order scoped to the caller's restaurant.
func (h *GetOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := scopedOrder(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Order.GetOrder(r.Context(), restaurantID, orderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

// AddItemRequest is the request body for POST /orders/{id}/items.
type AddItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Qty        int    `json:"qty"          validate:"gt=0,max=1000"`
}

// AddItemHandler handles POST /orders/{id}/items.
type AddItemHandler struct {
	svc *appsvcs.Services
}

// NewAddItemHandler returns an AddItemHandler backed by the given services.
func NewAddItemHandler(svc *appsvcs.Services) *AddItemHandler {
	return &AddItemHandler{svc: svc}
}

// Execute appends a menu item to the order and notifies the kitchen.
func (h *AddItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := scopedOrder(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AddItemRequest](w, r)
	if !ok {
		return
	}

	o, err := h.svc.Order.AddItem(r.Context(), restaurantID, orderID, uuid.MustParse(req.MenuItemID), req.Qty)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

// RemoveItemRequest is the request body for POST /orders/{id}/items/remove.
type RemoveItemRequest struct {
	Name string `json:"name" validate:"required"`
}

// RemoveItemHandler handles POST /orders/{id}/items/remove.
type RemoveItemHandler struct {
	svc *appsvcs.Services
}

// NewRemoveItemHandler returns a RemoveItemHandler backed by the given services.
func NewRemoveItemHandler(svc *appsvcs.Services) *RemoveItemHandler {
	return &RemoveItemHandler{svc: svc}
}

// Execute removes one line with the given name.
func (h *RemoveItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := scopedOrder(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RemoveItemRequest](w, r)
	if !ok {
		return
	}

	o, err := h.svc.Order.RemoveItem(r.Context(), restaurantID, orderID, req.Name)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

// GetBillHandler handles GET /orders/{id}/bill?scheme=single|split.
type GetBillHandler struct {
	svc *appsvcs.Services
}

// NewGetBillHandler returns a GetBillHandler backed by the given services.
func NewGetBillHandler(svc *appsvcs.Services) *GetBillHandler {
	return &GetBillHandler{svc: svc}
}

// Execute previews the bill without closing the order.
func (h *GetBillHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := scopedOrder(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Order.ComputeBill(r.Context(), restaurantID, orderID, r.URL.Query().Get("scheme"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// CloseOrderHandler handles POST /orders/{id}/close?scheme=single|split.
type CloseOrderHandler struct {
	svc *appsvcs.Services
}

// NewCloseOrderHandler returns a CloseOrderHandler backed by the given services.
func NewCloseOrderHandler(svc *appsvcs.Services) *CloseOrderHandler {
	return &CloseOrderHandler{svc: svc}
}

// Execute closes the order and returns its final bill. Repeating the call
// returns the same bill.
func (h *CloseOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := scopedOrder(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Order.CloseAndBill(r.Context(), restaurantID, orderID, r.URL.Query().Get("scheme"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// scopedOrder reads the tenant from the session and the order id from the
// URL, writing the error response itself when either is missing.
func scopedOrder(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return uuid.Nil, uuid.Nil, false
	}
	orderID, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, orderID, true
}
