// Package validator decodes JSON request bodies and checks them against
// go-playground/validator struct tags. Field names in error maps use the
// json tag, so clients see "table_no" rather than "TableNo".
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dineqr/dineqr/pkg/httpx"
)

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
})

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Validate checks s against its validate tags.
func Validate(s any) error {
	return instance().Struct(s)
}

// fixed holds messages for tags without a parameter.
var fixed = map[string]string{
	"required": "This field is required",
	"notblank": "Must not be blank",
	"uuid":     "Must be a valid UUID",
	"url":      "Must be a valid URL",
	"alphanum": "Must contain only letters and digits",
}

// withParam holds message formats for tags that take one.
var withParam = map[string]string{
	"min":   "Minimum length is %s",
	"max":   "Maximum length is %s",
	"len":   "Length must be exactly %s",
	"gt":    "Must be greater than %s",
	"gte":   "Must be greater than or equal to %s",
	"lte":   "Must be less than or equal to %s",
	"oneof": "Must be one of: %s",
}

// FormatValidationErrors maps each failing field to a readable message.
// Errors that are not validator.ValidationErrors yield an empty map.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	if msg, ok := fixed[fe.Tag()]; ok {
		return msg
	}
	if format, ok := withParam[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	return fmt.Sprintf("Validation failed on '%s'", fe.Tag())
}

// ValidateRequest decodes r's JSON body into T and validates it. On failure
// it writes the response itself and returns false: 413 for a body over the
// router's cap, 400 for a missing or malformed body, 422 with per-field
// messages for tag violations.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			httpx.JSONError(w, http.StatusBadRequest, "Request body is required")
		default:
			httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		}
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed",
			"fields": FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}
