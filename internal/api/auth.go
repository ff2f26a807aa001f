package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/klinika/internal/auth"
	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
	"github.com/erazemk/klinika/internal/store"
)

// AuthHandler handles the endpoints that run before a clinic is selected:
// login, signup, logout and clinic registration.
type AuthHandler struct {
	Svc       *service.Service
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
}

type sessionResponse struct {
	Token      string      `json:"token"`
	User       *model.User `json:"user"`
	ClinicCode string      `json:"clinic_code"`
}

type clinicRegistrationResponse struct {
	Clinic *model.Clinic `json:"clinic"`
	sessionResponse
}

func (h *AuthHandler) session(u *model.User) (*sessionResponse, error) {
	token, err := auth.GenerateToken(h.JWTSecret, h.TokenTTL, u)
	if err != nil {
		return nil, err
	}
	return &sessionResponse{Token: token, User: u, ClinicCode: u.ClinicCode}, nil
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "log in")
		return
	}

	resp, err := h.session(u)
	if err != nil {
		writeServiceError(w, r, err, "generate token")
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Svc.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "sign up")
		return
	}

	resp, err := h.session(u)
	if err != nil {
		writeServiceError(w, r, err, "generate token")
		return
	}
	jsonResponse(w, http.StatusCreated, resp)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expiresAt := time.Now().Add(h.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	rev := store.Revocation{
		JTI:        claims.ID,
		ClinicCode: claims.ClinicCode,
		UserID:     claims.UserID,
		ExpiresAt:  expiresAt,
	}
	if err := store.RevokeToken(r.Context(), h.DB, rev); err != nil {
		writeServiceError(w, r, err, "log out")
		return
	}

	slog.InfoContext(r.Context(), "user logged out", "user", claims.Email)
	message(w, "logged out")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	u, err := h.Svc.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	perms, err := h.Svc.Permissions(r.Context(), u.ID)
	if err != nil {
		writeServiceError(w, r, err, "get permissions")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"user": u, "permissions": perms})
}

// RegisterClinic handles POST /api/clinics.
func (h *AuthHandler) RegisterClinic(w http.ResponseWriter, r *http.Request) {
	var req service.ClinicRegistration
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clinic, admin, err := h.Svc.RegisterClinic(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "register clinic")
		return
	}

	sess, err := h.session(admin)
	if err != nil {
		writeServiceError(w, r, err, "generate token")
		return
	}
	jsonResponse(w, http.StatusCreated, clinicRegistrationResponse{Clinic: clinic, sessionResponse: *sess})
}

// GetClinic handles GET /api/clinics/{code}. It only confirms that a clinic
// exists and returns its name.
func (h *AuthHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.ClinicByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err, "get clinic")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"clinic_code": c.ClinicCode, "clinic_name": c.ClinicName})
}

// Health handles GET /api/public/health.
func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
