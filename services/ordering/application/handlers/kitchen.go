package handlers

import (
	"net/http"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	pkgvalidator "github.com/dineqr/dineqr/pkg/validator"
	appsvcs "github.com/dineqr/dineqr/services/ordering/application/services"
)

// KitchenQueueHandler handles GET /kitchen/orders.
type KitchenQueueHandler struct {
	svc *appsvcs.Services
}

// NewKitchenQueueHandler returns a KitchenQueueHandler backed by the given services.
func NewKitchenQueueHandler(svc *appsvcs.Services) *KitchenQueueHandler {
	return &KitchenQueueHandler{svc: svc}
}

// Execute lists the restaurant's orders that are not yet Served or Closed.
func (h *KitchenQueueHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	orders, err := h.svc.Order.ListKitchenQueue(r.Context(), restaurantID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponses(orders))
}

// ListAdditionsHandler handles GET /kitchen/additions?limit=.
type ListAdditionsHandler struct {
	svc *appsvcs.Services
}

// NewListAdditionsHandler returns a ListAdditionsHandler backed by the given services.
func NewListAdditionsHandler(svc *appsvcs.Services) *ListAdditionsHandler {
	return &ListAdditionsHandler{svc: svc}
}

// Execute returns unacknowledged additions, oldest first.
func (h *ListAdditionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	limit, err := httpx.IntQuery(r, "limit", 0)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	adds, err := h.svc.Kitchen.ListNew(r.Context(), restaurantID, limit)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAdditionResponses(adds))
}

// AckAdditionHandler handles POST /kitchen/additions/{id}/ack.
type AckAdditionHandler struct {
	svc *appsvcs.Services
}

// NewAckAdditionHandler returns an AckAdditionHandler backed by the given services.
func NewAckAdditionHandler(svc *appsvcs.Services) *AckAdditionHandler {
	return &AckAdditionHandler{svc: svc}
}

// Execute moves one New addition to Preparing.
func (h *AckAdditionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Kitchen.Acknowledge(r.Context(), restaurantID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatusRequest is the request body for POST /kitchen/orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatusHandler handles POST /kitchen/orders/{id}/status.
type UpdateStatusHandler struct {
	svc *appsvcs.Services
}

// NewUpdateStatusHandler returns an UpdateStatusHandler backed by the given services.
func NewUpdateStatusHandler(svc *appsvcs.Services) *UpdateStatusHandler {
	return &UpdateStatusHandler{svc: svc}
}

// Execute moves the order one step along Received, Preparing, Ready, Served.
func (h *UpdateStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := scopedOrder(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateStatusRequest](w, r)
	if !ok {
		return
	}

	o, err := h.svc.Order.UpdateStatus(r.Context(), restaurantID, orderID, req.Status)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}
