package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// defaultAppointmentDuration is used for clinics without a settings row.
const defaultAppointmentDuration = 30

// Settings returns the current clinic's settings.
func (s *Service) Settings(ctx context.Context) (*model.Clinic, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	c, err := store.GetClinic(ctx, s.DB, clinic)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrUnknownClinic
	}
	return c, nil
}

// UpdateSettings replaces the current clinic's settings. The clinic code is
// taken from the context and never changes.
func (s *Service) UpdateSettings(ctx context.Context, c *model.Clinic) (*model.Clinic, error) {
	trimAll(&c.ClinicName, &c.Email, &c.Timezone)
	clinic, err := clinicAndValidate(ctx, c)
	if err != nil {
		return nil, err
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return nil, invalidf("timezone: unknown time zone %q", c.Timezone)
	}

	if err := store.UpdateClinic(ctx, s.DB, clinic, c); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "clinic settings updated")
	return s.Settings(ctx)
}

// location returns the clinic's time zone, UTC if unknown.
func (s *Service) location(ctx context.Context, clinic string) *time.Location {
	c, err := store.GetClinic(ctx, s.DB, clinic)
	if err != nil || c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *Service) defaultDuration(ctx context.Context, clinic string) int {
	c, err := store.GetClinic(ctx, s.DB, clinic)
	if err != nil || c == nil || c.AppointmentDuration <= 0 {
		return defaultAppointmentDuration
	}
	return c.AppointmentDuration
}
