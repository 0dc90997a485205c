// Package errhttp maps domain sentinel errors to HTTP status codes.
// Ordering errors are classified by kind; add a case to classify for each
// sentinel of another bounded context.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/httpx"
	"github.com/dineqr/dineqr/pkg/money"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	orderingdomain "github.com/dineqr/dineqr/services/ordering/domain"
)

// ErrorResponse is the body written for every error.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become 500; neither they nor storage failures have
// their message echoed.
func WriteError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		msg = http.StatusText(status)
	}
	httpx.JSON(w, status, ErrorResponse{Error: msg, Kind: kind})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrRestaurantIDNotFound):
		return http.StatusUnauthorized, "unauthorized" // 401
	case errors.Is(err, menudomain.ErrMenuItemNotFound),
		errors.Is(err, menudomain.ErrRestaurantNotFound):
		return http.StatusNotFound, orderingdomain.KindNotFound // 404
	case errors.Is(err, menudomain.ErrMenuItemExists):
		return http.StatusConflict, orderingdomain.KindConflict // 409
	case errors.Is(err, menudomain.ErrInvalidMenuItem),
		errors.Is(err, menudomain.ErrUnknownTemplate),
		errors.Is(err, money.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, orderingdomain.KindValidation // 422
	case errors.Is(err, database.ErrTransient):
		return http.StatusServiceUnavailable, orderingdomain.KindStorage // 503
	}

	switch kind := orderingdomain.KindOf(err); kind {
	case orderingdomain.KindValidation:
		return http.StatusUnprocessableEntity, kind
	case orderingdomain.KindNotFound:
		return http.StatusNotFound, kind
	case orderingdomain.KindConflict:
		return http.StatusConflict, kind
	case orderingdomain.KindStorage:
		return http.StatusServiceUnavailable, kind
	default:
		return http.StatusInternalServerError, kind
	}
}
