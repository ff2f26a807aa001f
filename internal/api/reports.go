package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/klinika/internal/service"
)

// ActivitiesHandler serves the clinic's activity log.
type ActivitiesHandler struct {
	Svc *service.Service
}

// Recent handles GET /api/activities/recent?limit=10.
func (h *ActivitiesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	acts, err := h.Svc.RecentActivities(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err, "list activities")
		return
	}
	list(w, acts)
}

// Since handles GET /api/activities/since?since=.
func (h *ActivitiesHandler) Since(w http.ResponseWriter, r *http.Request) {
	since, ok := queryTime(w, r, "since")
	if !ok {
		return
	}

	acts, err := h.Svc.ActivitiesSince(r.Context(), since)
	if err != nil {
		writeServiceError(w, r, err, "list activities")
		return
	}
	list(w, acts)
}

// Entity handles GET /api/activities/entity/{type}/{id}.
func (h *ActivitiesHandler) Entity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "entity")
	if !ok {
		return
	}

	acts, err := h.Svc.EntityActivities(r.Context(), chi.URLParam(r, "type"), id)
	if err != nil {
		writeServiceError(w, r, err, "list activities")
		return
	}
	list(w, acts)
}

// User handles GET /api/activities/user/{userID}.
func (h *ActivitiesHandler) User(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", "user")
	if !ok {
		return
	}

	acts, err := h.Svc.UserActivities(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "list activities")
		return
	}
	list(w, acts)
}

// DashboardHandler serves the aggregates shown on the clinic dashboard.
type DashboardHandler struct {
	Svc *service.Service
}

// aggregate adapts a dashboard computation into a handler.
func aggregate[T any](name string, compute func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := compute(r.Context())
		if err != nil {
			writeServiceError(w, r, err, "compute "+name)
			return
		}
		jsonResponse(w, http.StatusOK, v)
	}
}

// Routes mounts the dashboard endpoints.
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/stats", aggregate("dashboard stats", h.Svc.DashboardStats))
	r.Get("/recent-activity", aggregate("recent activity", h.Svc.DashboardRecentActivity))
	r.Get("/performance", aggregate("performance", h.Svc.DashboardPerformance))
	r.Get("/revenue", aggregate("revenue", h.Svc.DashboardRevenue))
	r.Get("/upcoming-appointments", aggregate("upcoming appointments", h.Svc.DashboardUpcoming))
	r.Get("/inventory-alerts", aggregate("inventory alerts", h.Svc.DashboardInventoryAlerts))
	r.Get("/recent-pets", aggregate("recent pets", h.Svc.DashboardRecentPets))
}
