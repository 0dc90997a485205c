package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// requestWithValues builds a request whose session cookie carries values.
func requestWithValues(t *testing.T, store sessions.Store, values map[string]any) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	session, err := store.Get(r, sessionName)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	for k, v := range values {
		session.Values[k] = v
	}
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()
	restaurantID := uuid.New()

	w1 := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := SaveSession(store, w1, r1, Principal{RestaurantID: restaurantID, Role: RoleAdmin}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	for _, c := range w1.Result().Cookies() {
		r.AddCookie(c)
	}

	var captured Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = PrincipalFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	RequireAuth(store, newTestLogger())(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured.RestaurantID != restaurantID || captured.Role != RoleAdmin {
		t.Fatalf("unexpected principal %+v", captured)
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"missing cookie", nil},
		{"missing role", map[string]any{sessionRestaurantIDKey: uuid.NewString()}},
		{"missing restaurant", map[string]any{sessionRoleKey: RoleKitchen}},
		{"invalid restaurant", map[string]any{sessionRoleKey: RoleAdmin, sessionRestaurantIDKey: "not-a-uuid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.values != nil {
				r = requestWithValues(t, store, tt.values)
			}
			w := httptest.NewRecorder()
			RequireAuth(store, newTestLogger())(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireAuth_SuperadminWithoutRestaurant(t *testing.T) {
	store := newTestStore()
	r := requestWithValues(t, store, map[string]any{sessionRoleKey: RoleSuperadmin})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	RequireAuth(store, newTestLogger())(next).ServeHTTP(w, r)

	if !called || w.Code != http.StatusOK {
		t.Fatalf("expected superadmin through, got %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		want      int
	}{
		{"no principal", nil, http.StatusUnauthorized},
		{"wrong role", &Principal{RestaurantID: uuid.New(), Role: RoleKitchen}, http.StatusForbidden},
		{"allowed role", &Principal{RestaurantID: uuid.New(), Role: RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.principal != nil {
				r = r.WithContext(WithPrincipal(r.Context(), *tt.principal))
			}
			w := httptest.NewRecorder()
			RequireRole(RoleAdmin, RoleSuperadmin)(next).ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestClearSession(t *testing.T) {
	store := newTestStore()
	r := requestWithValues(t, store, map[string]any{sessionRoleKey: RoleAdmin})
	w := httptest.NewRecorder()

	if err := ClearSession(store, w, r); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expired cookie, got %+v", cookies)
	}
}
