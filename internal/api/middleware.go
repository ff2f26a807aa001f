package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/klinika/internal/auth"
	"github.com/erazemk/klinika/internal/service"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

type contextKey string

const (
	claimsKey     contextKey = "claims"
	requestLogKey contextKey = "request_log"
)

// AuthMiddleware validates the bearer token, rejects revoked tokens, and adds
// the claims and the acting user to the context.
func AuthMiddleware(db *sql.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to check token revocation", "error", err)
				jsonError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if revoked {
				jsonError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = service.WithActor(ctx, service.Actor{UserID: claims.UserID, Name: claims.Name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// ClinicGuard rejects requests whose resolved clinic differs from the clinic
// in the caller's token. Requests without a resolved clinic pass through and
// fail in the service layer.
func ClinicGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			jsonError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		code, ok := tenant.FromContext(r.Context())
		if ok && code != claims.ClinicCode {
			slog.WarnContext(r.Context(), "clinic mismatch", "user", claims.Email, "token_clinic", claims.ClinicCode)
			jsonError(w, http.StatusForbidden, "token is not valid for this clinic")
			return
		}
		if ok {
			noteClinic(r.Context(), code)
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission returns middleware allowing only users whose effective
// permissions include area.
func RequirePermission(svc *service.Service, area string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			perms, err := svc.Permissions(r.Context(), claims.UserID)
			if errors.Is(err, service.ErrNotFound) {
				jsonError(w, http.StatusUnauthorized, "user no longer exists")
				return
			}
			if err != nil {
				writeServiceError(w, r, err, "check permissions")
				return
			}
			if !perms.Allows(area) {
				jsonError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLog collects details discovered while a request is handled.
type requestLog struct {
	clinic string
}

func noteClinic(ctx context.Context, code string) {
	if l, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		l.clinic = code
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, duration
// and the clinic the request was scoped to.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestLog{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestLogKey, info)))

		attrs := []any{
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		}
		if info.clinic != "" {
			attrs = append(attrs, "clinic", info.clinic)
		}
		slog.InfoContext(r.Context(), "request", attrs...)
	})
}
