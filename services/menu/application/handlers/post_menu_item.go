package handlers

import (
	"net/http"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	"github.com/dineqr/dineqr/pkg/money"
	pkgvalidator "github.com/dineqr/dineqr/pkg/validator"
	appsvcs "github.com/dineqr/dineqr/services/menu/application/services"
)

// MenuItemRequest is the request body for POST /menu and PUT /menu/{id}.
type MenuItemRequest struct {
	Name     string      `json:"name"      validate:"required,min=1,max=120"`
	Price    money.Money `json:"price"     validate:"gte=0"`
	Category string      `json:"category"  validate:"max=60"`
	ImageURL string      `json:"image_url" validate:"omitempty,url"`
}

func (req *MenuItemRequest) input() appsvcs.MenuItemInput {
	return appsvcs.MenuItemInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		ImageURL: req.ImageURL,
	}
}

// PostMenuItemHandler handles POST /menu requests.
type PostMenuItemHandler struct {
	svc *appsvcs.Services
}

// NewPostMenuItemHandler returns a PostMenuItemHandler backed by the given services.
func NewPostMenuItemHandler(svc *appsvcs.Services) *PostMenuItemHandler {
	return &PostMenuItemHandler{svc: svc}
}

// Execute creates a menu item for the signed-in restaurant.
func (h *PostMenuItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[MenuItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Menu.Create(r.Context(), restaurantID, req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(item))
}

// PutMenuItemHandler handles PUT /menu/{id} requests.
type PutMenuItemHandler struct {
	svc *appsvcs.Services
}

// NewPutMenuItemHandler returns a PutMenuItemHandler backed by the given services.
func NewPutMenuItemHandler(svc *appsvcs.Services) *PutMenuItemHandler {
	return &PutMenuItemHandler{svc: svc}
}

// Execute replaces the editable fields of a menu item.
func (h *PutMenuItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[MenuItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Menu.Update(r.Context(), restaurantID, id, req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}
