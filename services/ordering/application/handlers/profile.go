package handlers

import (
	"net/http"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	pkgvalidator "github.com/dineqr/dineqr/pkg/validator"
	appsvcs "github.com/dineqr/dineqr/services/ordering/application/services"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

// UpdateProfileRequest is the request body for PUT /restaurant/profile.
type UpdateProfileRequest struct {
	Name    string `json:"name"    validate:"required,notblank,max=120"`
	GSTIN   string `json:"gstin"   validate:"omitempty,len=15,alphanum"`
	Address string `json:"address" validate:"max=255"`
	Phone   string `json:"phone"   validate:"max=20"`
}

// GetProfileHandler handles GET /restaurant/profile.
type GetProfileHandler struct {
	svc *appsvcs.Services
}

// NewGetProfileHandler returns a GetProfileHandler backed by the given services.
func NewGetProfileHandler(svc *appsvcs.Services) *GetProfileHandler {
	return &GetProfileHandler{svc: svc}
}

// Execute returns the signed-in admin's restaurant.
func (h *GetProfileHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	rest, err := h.svc.Profile.Get(r.Context(), restaurantID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rest)
}

// UpdateProfileHandler handles PUT /restaurant/profile.
type UpdateProfileHandler struct {
	svc *appsvcs.Services
}

// NewUpdateProfileHandler returns an UpdateProfileHandler backed by the given services.
func NewUpdateProfileHandler(svc *appsvcs.Services) *UpdateProfileHandler {
	return &UpdateProfileHandler{svc: svc}
}

// Execute replaces the name, GSTIN, address and phone shown on bills.
func (h *UpdateProfileHandler) Execute(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := auth.RestaurantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateProfileRequest](w, r)
	if !ok {
		return
	}

	rest, err := h.svc.Profile.Update(r.Context(), restaurantID, models.RestaurantProfile{
		Name:    req.Name,
		GSTIN:   req.GSTIN,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rest)
}
