package handlers

import (
	"net/http"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/dineqr/dineqr/pkg/errhttp"
	"github.com/dineqr/dineqr/pkg/httpx"
	appsvcs "github.com/dineqr/dineqr/services/ordering/application/services"
	"github.com/dineqr/dineqr/services/ordering/application/workflows"
)

// RestaurantStatsHandler handles GET /platform/restaurants.
type RestaurantStatsHandler struct {
	svc *appsvcs.Services
}

// NewRestaurantStatsHandler returns a RestaurantStatsHandler backed by the given services.
func NewRestaurantStatsHandler(svc *appsvcs.Services) *RestaurantStatsHandler {
	return &RestaurantStatsHandler{svc: svc}
}

// Execute returns order count and revenue for every restaurant.
func (h *RestaurantStatsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Report.RestaurantStats(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// DailySalesHandler handles GET /platform/sales?date=YYYY-MM-DD.
type DailySalesHandler struct {
	svc *appsvcs.Services
}

// NewDailySalesHandler returns a DailySalesHandler backed by the given services.
func NewDailySalesHandler(svc *appsvcs.Services) *DailySalesHandler {
	return &DailySalesHandler{svc: svc}
}

// Execute serves the cached snapshot for date, defaulting to today in UTC.
func (h *DailySalesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format(time.DateOnly)
	}
	sales, err := h.svc.Report.DailySales(r.Context(), date)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

// RebuildSalesResponse identifies the started workflow run.
type RebuildSalesResponse struct {
	Date  string `json:"date"`
	RunID string `json:"run_id"`
}

// RebuildSalesHandler handles POST /platform/sales/rebuild?date=YYYY-MM-DD.
type RebuildSalesHandler struct {
	temporal  client.Client
	taskQueue string
}

// NewRebuildSalesHandler returns a RebuildSalesHandler that starts workflows on taskQueue.
func NewRebuildSalesHandler(temporal client.Client, taskQueue string) *RebuildSalesHandler {
	return &RebuildSalesHandler{temporal: temporal, taskQueue: taskQueue}
}

// Execute starts the daily sales workflow for date instead of waiting for
// the nightly schedule.
func (h *RebuildSalesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}
	runID, err := workflows.StartDailySales(r.Context(), h.temporal, h.taskQueue, date)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, RebuildSalesResponse{Date: date, RunID: runID})
}
