package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/klinika/internal/api"
	"github.com/erazemk/klinika/internal/config"
	"github.com/erazemk/klinika/internal/db"
	"github.com/erazemk/klinika/internal/metrics"
	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/service"
	"github.com/erazemk/klinika/internal/store"
)

type serveCmd struct {
	Addr string `short:"a" help:"Listen address (overrides KLINIKA_ADDR)."`
}

func (c *serveCmd) Run(cfg *config.Config) error {
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}

	// First run: create the database with a clinic and an administrator.
	if _, err := os.Stat(cfg.DB); errors.Is(err, os.ErrNotExist) {
		res, err := initDatabase(context.Background(), cfg.DB, initOptions{
			ClinicName: "Klinika",
			AdminName:  "Administrator",
			AdminEmail: cfg.AdminEmail,
		})
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(os.Stdout, cfg.DB, res)
		fmt.Println()
	}

	database, err := openDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DB)

	ctx := context.Background()
	if err := seedDefaultClinic(ctx, database, cfg); err != nil {
		return err
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go purgeRevocations(purgeCtx, database, revocationPurgeInterval)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	opts := api.Options{
		DB:                  database,
		JWTSecret:           jwtSecret,
		TokenTTL:            cfg.TokenTTL,
		RequireClinicHeader: cfg.RequireClinicHeader,
		CORSOrigins:         cfg.CORSOrigins,
	}
	if cfg.Metrics {
		opts.Metrics = metrics.New()
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "metrics", cfg.Metrics,
		"require_clinic_header", cfg.RequireClinicHeader)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

const revocationPurgeInterval = time.Hour

// purgeRevocations drops expired token revocations now and then on every
// tick until ctx is cancelled.
func purgeRevocations(ctx context.Context, database *sql.DB, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		n, err := store.PurgeRevokedTokens(ctx, database, time.Now())
		switch {
		case err != nil && ctx.Err() == nil:
			slog.Error("purging revoked tokens", "error", err)
		case n > 0:
			slog.Info("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type initCmd struct {
	ClinicName string `default:"Klinika" help:"Name of the first clinic."`
	AdminName  string `default:"Administrator" help:"Name of the administrator account."`
	AdminEmail string `help:"Administrator email (overrides KLINIKA_ADMIN_EMAIL)."`
}

func (c *initCmd) Run(cfg *config.Config) error {
	if _, err := os.Stat(cfg.DB); err == nil {
		return fmt.Errorf("database %s already exists", cfg.DB)
	}

	email := c.AdminEmail
	if email == "" {
		email = cfg.AdminEmail
	}

	res, err := initDatabase(context.Background(), cfg.DB, initOptions{
		ClinicName: c.ClinicName,
		AdminName:  c.AdminName,
		AdminEmail: email,
	})
	if err != nil {
		return err
	}
	printInitResult(os.Stdout, cfg.DB, res)
	return nil
}

type migrateCmd struct{}

func (c *migrateCmd) Run(cfg *config.Config) error {
	database, err := openDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	v, err := db.Version(context.Background(), database)
	if err != nil {
		return err
	}
	slog.Info("database migrated", "path", cfg.DB, "version", v)
	return nil
}

func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(context.Background(), database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

// seedDefaultClinic stores the configured fallback clinic. With
// RequireClinicHeader the fallback is cleared so it cannot apply.
func seedDefaultClinic(ctx context.Context, database *sql.DB, cfg *config.Config) error {
	if cfg.RequireClinicHeader {
		return store.SetSetting(ctx, database, store.SettingDefaultClinicCode, "")
	}
	if cfg.DefaultClinicCode == "" {
		return nil
	}

	c, err := store.GetClinic(ctx, database, cfg.DefaultClinicCode)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("default clinic %s does not exist", cfg.DefaultClinicCode)
	}
	return store.SetSetting(ctx, database, store.SettingDefaultClinicCode, c.ClinicCode)
}

type initOptions struct {
	ClinicName string
	AdminName  string
	AdminEmail string
}

type initResult struct {
	Clinic   *model.Clinic
	Admin    *model.User
	Password string
}

// initDatabase creates a new database with one clinic, which also becomes the
// default clinic, and its administrator. On failure the file is removed.
func initDatabase(ctx context.Context, path string, opts initOptions) (res *initResult, err error) {
	database, err := openDatabase(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		database.Close()
		if err != nil {
			os.Remove(path)
		}
	}()

	password, err := generatePassword(16)
	if err != nil {
		return nil, fmt.Errorf("generating password: %w", err)
	}

	clinic, admin, err := service.New(database).RegisterClinic(ctx, service.ClinicRegistration{
		ClinicName:    opts.ClinicName,
		AdminName:     opts.AdminName,
		AdminEmail:    opts.AdminEmail,
		AdminPassword: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registering clinic: %w", err)
	}

	if err := store.SetSetting(ctx, database, store.SettingDefaultClinicCode, clinic.ClinicCode); err != nil {
		return nil, err
	}
	return &initResult{Clinic: clinic, Admin: admin, Password: password}, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath string, res *initResult) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Clinic created: %s (code %s)\n", res.Clinic.ClinicName, res.Clinic.ClinicCode)
	fmt.Fprintln(w, "Administrator account:")
	fmt.Fprintf(w, "  Email:    %s\n", res.Admin.Email)
	fmt.Fprintf(w, "  Password: %s\n", res.Password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintf(w, "Send X-Clinic-Code: %s with API requests for this clinic.\n", res.Clinic.ClinicCode)
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
