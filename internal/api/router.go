package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/erazemk/klinika/internal/metrics"
	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/requestid"
	"github.com/erazemk/klinika/internal/service"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// Options configures NewRouter.
type Options struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration

	// RequireClinicHeader disables the default-clinic fallback, so requests
	// without X-Clinic-Code stay unresolved.
	RequireClinicHeader bool

	CORSOrigins []string

	// Metrics enables /metrics and request instrumentation when non-nil.
	Metrics *metrics.Metrics

	// Now overrides the service clock in tests.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
//
// Authentication, public and clinic-registration routes are mounted outside
// the clinic scope. Every other route runs with the clinic resolved from
// X-Clinic-Code (or the default clinic) and requires a token of that clinic.
func NewRouter(opts Options) http.Handler {
	svc := service.New(opts.DB)
	if opts.Now != nil {
		svc.Now = opts.Now
	}

	authHandler := &AuthHandler{Svc: svc, DB: opts.DB, JWTSecret: opts.JWTSecret, TokenTTL: opts.TokenTTL}
	usersHandler := &UsersHandler{Svc: svc}
	settingsHandler := &SettingsHandler{Svc: svc}
	ownersHandler := newOwnersHandler(svc)
	petsHandler := newPetsHandler(svc)
	vetsHandler := newVeterinariansHandler(svc)
	appointmentsHandler := newAppointmentsHandler(svc)
	invoicesHandler := newInvoicesHandler(svc)
	paymentsHandler := &PaymentsHandler{Svc: svc}
	inventoryHandler := newInventoryHandler(svc)
	vaccinationsHandler := newVaccinationsHandler(svc)
	recordsHandler := newMedicalRecordsHandler(svc)
	prescriptionsHandler := newPrescriptionsHandler(svc)
	labTestsHandler := newLabTestsHandler(svc)
	activitiesHandler := &ActivitiesHandler{Svc: svc}
	dashboardHandler := &DashboardHandler{Svc: svc}

	authMW := AuthMiddleware(opts.DB, opts.JWTSecret)
	perm := func(area string) func(http.Handler) http.Handler {
		return RequirePermission(svc, area)
	}

	resolvers := []tenant.Resolver{tenant.NewHeaderResolver("")}
	if !opts.RequireClinicHeader {
		resolvers = append(resolvers, &tenant.FallbackResolver{Lookup: func(ctx context.Context) (string, error) {
			return store.GetDefaultClinicCode(ctx, opts.DB)
		}})
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(opts.CORSOrigins))

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Outside the clinic scope.
		r.Get("/public/health", authHandler.Health)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/signup", authHandler.Signup)
		r.With(authMW).Post("/auth/logout", authHandler.Logout)
		r.Post("/clinics", authHandler.RegisterClinic)
		r.Get("/clinics/{code}", authHandler.GetClinic)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Use(tenant.Middleware(resolvers...))
			r.Use(ClinicGuard)
			if opts.Metrics != nil {
				r.Use(opts.Metrics.CountClinic)
			}

			r.Get("/auth/me", authHandler.Me)

			r.Get("/settings", settingsHandler.Get)
			r.With(perm(model.AreaSettings)).Put("/settings", settingsHandler.Update)

			r.Route("/users", func(r chi.Router) {
				r.Use(perm(model.AreaSettings))
				r.Get("/", usersHandler.List)
				r.Post("/", usersHandler.Create)
				r.Get("/{id}", usersHandler.Get)
				r.Put("/{id}", usersHandler.Update)
				r.Delete("/{id}", usersHandler.Delete)
				r.Get("/{id}/permissions", usersHandler.GetPermissions)
				r.Put("/{id}/permissions", usersHandler.SetPermissions)
			})

			r.Route("/owners", func(r chi.Router) {
				r.Use(perm(model.AreaOwners))
				r.Get("/", ownersHandler.List)
				r.Post("/", ownersHandler.Create)
				r.Get("/{id}", ownersHandler.Get)
				r.Put("/{id}", ownersHandler.Update)
				r.Delete("/{id}", ownersHandler.Delete)
				r.Get("/{id}/pets", ownersHandler.Pets)
			})

			r.Route("/pets", func(r chi.Router) {
				r.Use(perm(model.AreaPets))
				r.Get("/", petsHandler.List)
				r.Post("/", petsHandler.Create)
				r.Get("/{id}", petsHandler.Get)
				r.Put("/{id}", petsHandler.Update)
				r.Delete("/{id}", petsHandler.Delete)
				r.Put("/{id}/photo", petsHandler.UploadPhoto)
				r.Get("/{id}/photo", petsHandler.GetPhoto)
			})

			r.Route("/veterinarians", func(r chi.Router) {
				r.Use(perm(model.AreaAppointments))
				r.Get("/", vetsHandler.List)
				r.Get("/{id}", vetsHandler.Get)
				r.With(perm(model.AreaSettings)).Post("/", vetsHandler.Create)
				r.With(perm(model.AreaSettings)).Put("/{id}", vetsHandler.Update)
				r.With(perm(model.AreaSettings)).Delete("/{id}", vetsHandler.Delete)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Use(perm(model.AreaAppointments))
				r.Get("/", appointmentsHandler.List)
				r.Post("/", appointmentsHandler.Create)
				r.Get("/today", appointmentsHandler.Today)
				r.Get("/upcoming", appointmentsHandler.Upcoming)
				r.Get("/{id}", appointmentsHandler.Get)
				r.Put("/{id}", appointmentsHandler.Update)
				r.Patch("/{id}/status", appointmentsHandler.SetStatus)
				r.Delete("/{id}", appointmentsHandler.Delete)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(perm(model.AreaBilling))
				r.Get("/", invoicesHandler.List)
				r.Post("/", invoicesHandler.Create)
				r.Get("/overdue", invoicesHandler.Overdue)
				r.Get("/{id}", invoicesHandler.Get)
				r.Put("/{id}", invoicesHandler.Update)
				r.Delete("/{id}", invoicesHandler.Delete)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Use(perm(model.AreaBilling))
				r.Post("/process", paymentsHandler.Process)
				r.Get("/invoice/{invoiceID}", paymentsHandler.ForInvoice)
				r.Get("/{id}", paymentsHandler.Get)
				r.Delete("/{id}", paymentsHandler.Delete)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Use(perm(model.AreaInventory))
				r.Get("/", inventoryHandler.List)
				r.Post("/", inventoryHandler.Create)
				r.Get("/low-stock", inventoryHandler.LowStock)
				r.Get("/expiring", inventoryHandler.Expiring)
				r.Get("/{id}", inventoryHandler.Get)
				r.Put("/{id}", inventoryHandler.Update)
				r.Delete("/{id}", inventoryHandler.Delete)
				r.Post("/{id}/adjust", inventoryHandler.Adjust)
			})

			r.Route("/vaccinations", func(r chi.Router) {
				r.Use(perm(model.AreaRecords))
				r.Get("/", vaccinationsHandler.List)
				r.Post("/", vaccinationsHandler.Create)
				r.Get("/due", vaccinationsHandler.Due)
				r.Get("/{id}", vaccinationsHandler.Get)
				r.Put("/{id}", vaccinationsHandler.Update)
				r.Delete("/{id}", vaccinationsHandler.Delete)
			})

			r.With(perm(model.AreaRecords)).Route("/records", recordRoutes(recordsHandler))
			r.With(perm(model.AreaRecords)).Route("/prescriptions", recordRoutes(prescriptionsHandler))
			r.With(perm(model.AreaRecords)).Route("/lab-tests", recordRoutes(labTestsHandler))

			r.Route("/activities", func(r chi.Router) {
				r.Use(perm(model.AreaReports))
				r.Get("/recent", activitiesHandler.Recent)
				r.Get("/since", activitiesHandler.Since)
				r.Get("/entity/{type}/{id}", activitiesHandler.Entity)
				r.Get("/user/{userID}", activitiesHandler.User)
			})

			r.With(perm(model.AreaReports)).Route("/dashboard", dashboardHandler.Routes)
		})
	})

	return r
}

func recordRoutes[T any](h petRecords[T]) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	}
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", tenant.Header, requestid.Header},
		ExposedHeaders: []string{requestid.Header},
		MaxAge:         300,
	}).Handler
}
