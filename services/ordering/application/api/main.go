package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/dineqr/dineqr/pkg/app"
	"github.com/dineqr/dineqr/pkg/auth"
	"github.com/dineqr/dineqr/services/ordering/application/handlers"
	appsvcs "github.com/dineqr/dineqr/services/ordering/application/services"
)

// placementsPerMinute bounds anonymous placements per client IP.
const placementsPerMinute = 30

// OrderingRoutes registers ordering endpoints on the provided chi router.
func OrderingRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	requireAuth := auth.RequireAuth(a.SessionStore, a.Logger)

	r.With(httprate.LimitByIP(placementsPerMinute, time.Minute)).
		Post("/public/restaurants/{restaurant}/orders", handlers.NewPostOrderHandler(svcs).Execute)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, auth.RequireRole(auth.RoleAdmin))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", handlers.NewListOrdersHandler(svcs).Execute)
			r.Get("/by-date", handlers.NewOrdersByDateHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetOrderHandler(svcs).Execute)
			r.Post("/{id}/items", handlers.NewAddItemHandler(svcs).Execute)
			r.Post("/{id}/items/remove", handlers.NewRemoveItemHandler(svcs).Execute)
			r.Get("/{id}/bill", handlers.NewGetBillHandler(svcs).Execute)
			r.Post("/{id}/close", handlers.NewCloseOrderHandler(svcs).Execute)
		})
		r.Get("/restaurant/profile", handlers.NewGetProfileHandler(svcs).Execute)
		r.Put("/restaurant/profile", handlers.NewUpdateProfileHandler(svcs).Execute)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, auth.RequireRole(auth.RoleKitchen, auth.RoleAdmin))
		r.Route("/kitchen", func(r chi.Router) {
			r.Get("/orders", handlers.NewKitchenQueueHandler(svcs).Execute)
			r.Post("/orders/{id}/status", handlers.NewUpdateStatusHandler(svcs).Execute)
			r.Get("/additions", handlers.NewListAdditionsHandler(svcs).Execute)
			r.Post("/additions/{id}/ack", handlers.NewAckAdditionHandler(svcs).Execute)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, auth.RequireRole(auth.RoleSuperadmin))
		r.Route("/platform", func(r chi.Router) {
			r.Get("/restaurants", handlers.NewRestaurantStatsHandler(svcs).Execute)
			r.Get("/sales", handlers.NewDailySalesHandler(svcs).Execute)
			if a.TemporalClient != nil && a.Config != nil {
				r.Post("/sales/rebuild", handlers.NewRebuildSalesHandler(
					a.TemporalClient.Client, a.Config.TemporalTaskQueue).Execute)
			}
		})
	})
}
