package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/pkg/database"
	"github.com/dineqr/dineqr/pkg/money"
	menudomain "github.com/dineqr/dineqr/services/menu/domain"
	"github.com/dineqr/dineqr/services/ordering/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"ErrOrderNotFound", domain.ErrOrderNotFound, http.StatusNotFound, domain.KindNotFound},
		{"ErrItemNotInOrder", fmt.Errorf("%w: %q", domain.ErrItemNotInOrder, "Tea"), http.StatusNotFound, domain.KindNotFound},
		{"ErrInvalidQuantity", domain.ErrInvalidQuantity, http.StatusUnprocessableEntity, domain.KindValidation},
		{"ErrInvalidTransition", fmt.Errorf("%w: Ready -> Received", domain.ErrInvalidTransition), http.StatusUnprocessableEntity, domain.KindValidation},
		{"ErrOpenOrderExists", domain.ErrOpenOrderExists, http.StatusConflict, domain.KindConflict},
		{"ErrStorage", fmt.Errorf("%w: timeout", domain.ErrStorage), http.StatusServiceUnavailable, domain.KindStorage},
		{"database.ErrTransient", fmt.Errorf("tx: %w", database.ErrTransient), http.StatusServiceUnavailable, domain.KindStorage},
		{"menu ErrMenuItemNotFound", fmt.Errorf("get menu item: %w", menudomain.ErrMenuItemNotFound), http.StatusNotFound, domain.KindNotFound},
		{"menu ErrMenuItemExists", menudomain.ErrMenuItemExists, http.StatusConflict, domain.KindConflict},
		{"menu ErrInvalidMenuItem", menudomain.ErrInvalidMenuItem, http.StatusUnprocessableEntity, domain.KindValidation},
		{"money.ErrInvalidAmount", money.ErrInvalidAmount, http.StatusUnprocessableEntity, domain.KindValidation},
		{"no restaurant in session", auth.ErrRestaurantIDNotFound, http.StatusUnauthorized, "unauthorized"},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError, domain.KindInternal},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError, domain.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body.Kind != tt.wantKind {
				t.Fatalf("expected kind %q, got %q", tt.wantKind, body.Kind)
			}
		})
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("pq: relation \"orders\" does not exist"))

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Error != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("internal message leaked: %q", body.Error)
	}
}

func TestWriteError_HidesStorageMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("%w: insert order: read tcp 10.0.0.4:5432: connection reset by peer", domain.ErrStorage))

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Error != http.StatusText(http.StatusServiceUnavailable) {
		t.Fatalf("storage message leaked: %q", body.Error)
	}
	if body.Kind != domain.KindStorage {
		t.Fatalf("expected kind %q, got %q", domain.KindStorage, body.Kind)
	}
}

func TestWriteError_MissingRestaurantIsNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("place order: %w", domain.ErrRestaurantMissing))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, domain.ErrOrderNotFound)

	if ct := w.Header().Get("Content-Type"); ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
