package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

var appointmentStatuses = []string{
	model.AppointmentScheduled, model.AppointmentCheckedIn, model.AppointmentInProgress,
	model.AppointmentCompleted, model.AppointmentCancelled,
}

// AppointmentFilter narrows ListAppointments. From is inclusive, To exclusive.
type AppointmentFilter = store.AppointmentFilter

func (s *Service) ListAppointments(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return nil, invalidf("from must be before to")
	}
	return store.ListAppointments(ctx, s.DB, clinic, f)
}

// TodayAppointments returns the appointments scheduled for the clinic's current day.
func (s *Service) TodayAppointments(ctx context.Context) ([]model.Appointment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	start := model.StartOfDay(s.now().In(s.location(ctx, clinic)))
	return store.ListAppointments(ctx, s.DB, clinic, store.AppointmentFilter{From: start, To: start.AddDate(0, 0, 1)})
}

// UpcomingAppointments returns open appointments from now on.
func (s *Service) UpcomingAppointments(ctx context.Context) ([]model.Appointment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	all, err := store.ListAppointments(ctx, s.DB, clinic, store.AppointmentFilter{From: s.now()})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(a model.Appointment) bool { return !a.Open() }), nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, s.DB, clinic, "appointment", id, store.GetAppointment)
}

func (s *Service) checkAppointment(ctx context.Context, clinic string, a *model.Appointment) error {
	a.VeterinarianID = nilIfZero(a.VeterinarianID)
	if err := reference(ctx, s.DB, clinic, "pet_id", a.PetID, store.GetPet); err != nil {
		return err
	}
	return optionalReference(ctx, s.DB, clinic, "veterinarian_id", a.VeterinarianID, store.GetVeterinarian)
}

// CreateAppointment books an appointment. A zero duration takes the clinic's default.
func (s *Service) CreateAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	clinic, err := clinicAndValidate(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := s.checkAppointment(ctx, clinic, a); err != nil {
		return nil, err
	}
	if a.Duration == 0 {
		a.Duration = s.defaultDuration(ctx, clinic)
	}

	created, err := store.CreateAppointment(ctx, s.DB, a)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "appointment created", "appointment", created.ID, "pet", created.PetID,
		"scheduled_at", created.ScheduledAt)
	s.record(ctx, model.ActionCreate, model.EntityAppointment, created.ID, created.Type,
		"Appointment scheduled for "+created.ScheduledAt.Format(time.DateTime))
	return created, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id int64, a *model.Appointment) (*model.Appointment, error) {
	clinic, err := clinicAndValidate(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := s.checkAppointment(ctx, clinic, a); err != nil {
		return nil, err
	}
	if a.Status == "" {
		a.Status = model.AppointmentScheduled
	}
	if a.Duration == 0 {
		a.Duration = s.defaultDuration(ctx, clinic)
	}

	a.ID = id
	if err := store.UpdateAppointment(ctx, s.DB, clinic, a); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityAppointment, id, a.Type, "Appointment updated")
	return load(ctx, s.DB, clinic, "appointment", id, store.GetAppointment)
}

// SetAppointmentStatus moves an appointment to a new status.
func (s *Service) SetAppointmentStatus(ctx context.Context, id int64, status string) (*model.Appointment, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(appointmentStatuses, status) {
		return nil, invalidf("status must be one of: %v", appointmentStatuses)
	}

	if err := store.SetAppointmentStatus(ctx, s.DB, clinic, id, status); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityAppointment, id, "", fmt.Sprintf("Status changed to %s", status))
	return load(ctx, s.DB, clinic, "appointment", id, store.GetAppointment)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	a, err := load(ctx, s.DB, clinic, "appointment", id, store.GetAppointment)
	if err != nil {
		return err
	}
	if err := store.DeleteAppointment(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityAppointment, id, a.Type, "Appointment removed")
	return nil
}
