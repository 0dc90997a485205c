package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dineqr/dineqr/pkg/httpx"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		value      any
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{"created body", http.StatusCreated, map[string]string{"id": "abc"}, http.StatusCreated, "id", "abc"},
		{"unencodable value", http.StatusOK, map[string]any{"ch": make(chan int)}, http.StatusInternalServerError, "error", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			httpx.JSON(w, tt.status, tt.value)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			for h, want := range map[string]string{
				"Content-Type":           "application/json; charset=utf-8",
				"X-Content-Type-Options": "nosniff",
				"Cache-Control":          "no-store",
			} {
				if got := w.Header().Get(h); got != want {
					t.Errorf("%s = %q, want %q", h, got, want)
				}
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body[tt.wantKey] != tt.wantValue {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusUnauthorized, "authentication required")

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if w.Code != http.StatusUnauthorized || body["error"] != "authentication required" {
		t.Errorf("got %d %v", w.Code, body)
	}
}
