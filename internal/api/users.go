package api

import (
	"net/http"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
)

// UsersHandler manages the staff accounts of the current clinic.
type UsersHandler struct {
	Svc *service.Service
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list users")
		return
	}
	list(w, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.NewUser
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Svc.CreateUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "create user")
		return
	}
	jsonResponse(w, http.StatusCreated, u)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	u, err := h.Svc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	jsonResponse(w, http.StatusOK, u)
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req service.UserUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Svc.UpdateUser(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "update user")
		return
	}
	jsonResponse(w, http.StatusOK, u)
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.Svc.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete user")
		return
	}
	message(w, "user deleted")
}

// GetPermissions handles GET /api/users/{id}/permissions.
func (h *UsersHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	perms, err := h.Svc.Permissions(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get permissions")
		return
	}
	jsonResponse(w, http.StatusOK, perms)
}

// SetPermissions handles PUT /api/users/{id}/permissions.
func (h *UsersHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req model.Permissions
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	perms, err := h.Svc.SetPermissions(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "set permissions")
		return
	}
	jsonResponse(w, http.StatusOK, perms)
}

// SettingsHandler serves the current clinic's settings.
type SettingsHandler struct {
	Svc *service.Service
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get settings")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Clinic
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Svc.UpdateSettings(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "update settings")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}
