package auth

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/dineqr/dineqr/pkg/httpx"
	"github.com/dineqr/dineqr/pkg/logger"
)

const (
	sessionName            = "dineqr_session"
	sessionRestaurantIDKey = "restaurant_id"
	sessionRoleKey         = "role"
)

// SaveSession writes p into the session cookie. Login flows call it after
// verifying credentials.
func SaveSession(store sessions.Store, w http.ResponseWriter, r *http.Request, p Principal) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Values[sessionRoleKey] = p.Role
	if p.RestaurantID != uuid.Nil {
		session.Values[sessionRestaurantIDKey] = p.RestaurantID.String()
	} else {
		delete(session.Values, sessionRestaurantIDKey)
	}
	return session.Save(r, w)
}

// ClearSession expires the session cookie and its server-side data.
func ClearSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the role and, for tenant staff, the restaurant_id from the session and
// injects a Principal into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or incomplete.
//
// After this middleware, handlers can safely call auth.RestaurantIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			role, _ := session.Values[sessionRoleKey].(string)
			if role == "" {
				log.WarnContext(r.Context(), "session missing role")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			p := Principal{Role: role}
			if role != RoleSuperadmin {
				idStr, _ := session.Values[sessionRestaurantIDKey].(string)
				id, err := uuid.Parse(idStr)
				if err != nil || id == uuid.Nil {
					log.WarnContext(r.Context(), "invalid restaurant_id in session", "restaurant_id", idStr, "error", err)
					httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
					return
				}
				p.RestaurantID = id
			}

			ctx := logger.ContextWith(WithPrincipal(r.Context(), p), "role", p.Role)
			if p.RestaurantID != uuid.Nil {
				ctx = logger.ContextWith(ctx, "restaurant_id", p.RestaurantID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated
// principal holds one of roles. Must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromCtx(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, p.Role) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
