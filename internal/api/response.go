package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/klinika/internal/service"
	"github.com/erazemk/klinika/internal/tenant"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeServiceError maps a service error to its HTTP status. Unclassified
// errors are logged and reported as 500 with a generic message built from
// action, e.g. "failed to create owner".
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, tenant.ErrUnresolved):
		jsonError(w, http.StatusBadRequest, "clinic code not resolved")
	case errors.Is(err, tenant.ErrConflict):
		jsonError(w, http.StatusConflict, "record belongs to a different clinic")
	case errors.Is(err, service.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrDuplicate):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnknownClinic):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "failed to "+action, "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, param, kind string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s id", kind))
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional positive integer query parameter.
func queryInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// queryInt parses an optional non-negative integer, returning def if absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// queryTime parses an optional RFC 3339 timestamp or a YYYY-MM-DD date.
func queryTime(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true
	}
	jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: expected RFC 3339 time or YYYY-MM-DD", name))
	return time.Time{}, false
}

// list writes items as a JSON array, never null.
func list[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	jsonResponse(w, http.StatusOK, items)
}

func message(w http.ResponseWriter, msg string) {
	jsonResponse(w, http.StatusOK, map[string]string{"message": msg})
}
