package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/dineqr/dineqr/pkg/app"
	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/services/menu/application/handlers"
	appsvcs "github.com/dineqr/dineqr/services/menu/application/services"
)

// MenuRoutes registers menu endpoints on the provided chi router.
// The public menu is open; management routes require an admin session.
func MenuRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)

	r.Get("/public/restaurants/{restaurant}/menu", handlers.NewGetPublicMenuHandler(svcs).Execute)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", handlers.NewListMenuHandler(svcs).Execute)
			r.Post("/", handlers.NewPostMenuItemHandler(svcs).Execute)
			r.Post("/templates", handlers.NewImportTemplateHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetMenuItemHandler(svcs).Execute)
			r.Put("/{id}", handlers.NewPutMenuItemHandler(svcs).Execute)
			r.Post("/{id}/toggle", handlers.NewToggleMenuItemHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteMenuItemHandler(svcs).Execute)
		})
	})
}
