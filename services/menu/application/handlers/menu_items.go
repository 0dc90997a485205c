package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	pkgvalidator "github.com/dineqr/dineqr/pkg/validator"
	appsvcs "github.com/dineqr/dineqr/services/menu/application/services"
)

// ListMenuHandler handles GET /menu.
type ListMenuHandler struct {
	svc *appsvcs.Services
}

func NewListMenuHandler(svc *appsvcs.Services) *ListMenuHandler {
	return &ListMenuHandler{svc: svc}
}

// Execute lists every item, including unavailable ones. With ?available=true
// only orderable items are returned.
func (h *ListMenuHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	list := h.svc.Menu.List
	if r.URL.Query().Get("available") == "true" {
		list = h.svc.Menu.ListAvailable
	}
	items, err := list(r.Context(), restaurantID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponses(items))
}

// GetMenuItemHandler handles GET /menu/{id}.
type GetMenuItemHandler struct {
	svc *appsvcs.Services
}

func NewGetMenuItemHandler(svc *appsvcs.Services) *GetMenuItemHandler {
	return &GetMenuItemHandler{svc: svc}
}

func (h *GetMenuItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.svc.Menu.GetByID(r.Context(), restaurantID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}

// ToggleMenuItemHandler handles POST /menu/{id}/toggle.
type ToggleMenuItemHandler struct {
	svc *appsvcs.Services
}

func NewToggleMenuItemHandler(svc *appsvcs.Services) *ToggleMenuItemHandler {
	return &ToggleMenuItemHandler{svc: svc}
}

func (h *ToggleMenuItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.svc.Menu.ToggleAvailability(r.Context(), restaurantID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}

// DeleteMenuItemHandler handles DELETE /menu/{id}.
type DeleteMenuItemHandler struct {
	svc *appsvcs.Services
}

func NewDeleteMenuItemHandler(svc *appsvcs.Services) *DeleteMenuItemHandler {
	return &DeleteMenuItemHandler{svc: svc}
}

func (h *DeleteMenuItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Menu.Delete(r.Context(), restaurantID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportTemplateRequest is the request body for POST /menu/templates.
type ImportTemplateRequest struct {
	Template string `json:"template" validate:"required,oneof=cafe restaurant"`
}

// ImportTemplateResponse reports how many items were added.
type ImportTemplateResponse struct {
	Added int `json:"added"`
}

// ImportTemplateHandler handles POST /menu/templates.
type ImportTemplateHandler struct {
	svc *appsvcs.Services
}

func NewImportTemplateHandler(svc *appsvcs.Services) *ImportTemplateHandler {
	return &ImportTemplateHandler{svc: svc}
}

func (h *ImportTemplateHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[ImportTemplateRequest](w, r)
	if !ok {
		return
	}

	n, err := h.svc.Menu.ImportTemplate(r.Context(), restaurantID, req.Template)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ImportTemplateResponse{Added: n})
}

// GetPublicMenuHandler handles GET /public/restaurants/{restaurant}/menu, where
// {restaurant} is the subdomain printed on the table QR code.
type GetPublicMenuHandler struct {
	svc *appsvcs.Services
}

func NewGetPublicMenuHandler(svc *appsvcs.Services) *GetPublicMenuHandler {
	return &GetPublicMenuHandler{svc: svc}
}

// Execute serves the menu customers see after scanning a table QR code.
func (h *GetPublicMenuHandler) Execute(w http.ResponseWriter, r *http.Request) {
	menu, err := h.svc.Menu.PublicMenu(r.Context(), chi.URLParam(r, "restaurant"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, PublicMenuResponse{
		RestaurantID:   menu.RestaurantID,
		RestaurantName: menu.RestaurantName,
		Items:          toResponses(menu.Items),
	})
}
