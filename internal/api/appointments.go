package api

import (
	"net/http"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
)

// AppointmentsHandler handles appointment endpoints.
type AppointmentsHandler struct {
	Svc *service.Service
	resource[model.Appointment]
}

func newAppointmentsHandler(svc *service.Service) *AppointmentsHandler {
	return &AppointmentsHandler{Svc: svc, resource: resource[model.Appointment]{
		kind:   "appointment",
		get:    svc.GetAppointment,
		create: svc.CreateAppointment,
		update: svc.UpdateAppointment,
		remove: svc.DeleteAppointment,
	}}
}

// List handles GET /api/appointments?pet_id=&from=&to=.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		f  service.AppointmentFilter
		ok bool
	)
	if f.PetID, ok = queryInt64(w, r, "pet_id"); !ok {
		return
	}
	if f.From, ok = queryTime(w, r, "from"); !ok {
		return
	}
	if f.To, ok = queryTime(w, r, "to"); !ok {
		return
	}

	appts, err := h.Svc.ListAppointments(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, "list appointments")
		return
	}
	list(w, appts)
}

// Today handles GET /api/appointments/today.
func (h *AppointmentsHandler) Today(w http.ResponseWriter, r *http.Request) {
	appts, err := h.Svc.TodayAppointments(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list appointments")
		return
	}
	list(w, appts)
}

// Upcoming handles GET /api/appointments/upcoming.
func (h *AppointmentsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	appts, err := h.Svc.UpcomingAppointments(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list appointments")
		return
	}
	list(w, appts)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/appointments/{id}/status.
func (h *AppointmentsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Svc.SetAppointmentStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err, "update appointment status")
		return
	}
	jsonResponse(w, http.StatusOK, a)
}
