package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const appointmentColumns = `id, clinic_code, pet_id, veterinarian_id, scheduled_at, duration, type, status, notes,
	created_at, updated_at`

func scanAppointment(s scanner) (model.Appointment, error) {
	var a model.Appointment
	err := s.Scan(&a.ID, &a.ClinicCode, &a.PetID, &a.VeterinarianID, &a.ScheduledAt, &a.Duration,
		&a.Type, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// AppointmentFilter narrows ListAppointments. Zero values are ignored;
// From is inclusive and To exclusive.
type AppointmentFilter struct {
	PetID int64
	From  time.Time
	To    time.Time
}

// CreateAppointment stamps and inserts a new appointment.
func CreateAppointment(ctx context.Context, db *sql.DB, a *model.Appointment) (*model.Appointment, error) {
	if err := tenant.Stamp(ctx, a); err != nil {
		return nil, err
	}
	if a.Status == "" {
		a.Status = model.AppointmentScheduled
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO appointments (clinic_code, pet_id, veterinarian_id, scheduled_at, duration, type, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ClinicCode, a.PetID, a.VeterinarianID, dbTime(a.ScheduledAt), a.Duration, a.Type, a.Status, a.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting appointment id: %w", err)
	}

	return GetAppointment(ctx, db, a.ClinicCode, id)
}

// GetAppointment returns an appointment of the clinic by ID, or nil.
func GetAppointment(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Appointment, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	a, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanAppointment)
	if err != nil {
		return nil, fmt.Errorf("getting appointment: %w", err)
	}
	return a, nil
}

// ListAppointments returns the clinic's appointments ordered by time.
func ListAppointments(ctx context.Context, db *sql.DB, clinicCode string, f AppointmentFilter) ([]model.Appointment, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE clinic_code = ?`
	args := []any{clinicCode}
	if f.PetID > 0 {
		query += ` AND pet_id = ?`
		args = append(args, f.PetID)
	}
	if !f.From.IsZero() {
		query += ` AND scheduled_at >= ?`
		args = append(args, dbTime(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND scheduled_at < ?`
		args = append(args, dbTime(f.To))
	}
	query += ` ORDER BY scheduled_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	appointments, err := collect(rows, scanAppointment)
	if err != nil {
		return nil, fmt.Errorf("scanning appointment: %w", err)
	}
	return appointments, nil
}

// UpdateAppointment updates an appointment.
func UpdateAppointment(ctx context.Context, db *sql.DB, clinicCode string, a *model.Appointment) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET pet_id = ?, veterinarian_id = ?, scheduled_at = ?, duration = ?, type = ?,
		     status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ?`,
		a.PetID, a.VeterinarianID, dbTime(a.ScheduledAt), a.Duration, a.Type, a.Status, a.Notes,
		a.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}
	return mustAffect(result, "updating appointment")
}

// SetAppointmentStatus changes only the status of an appointment.
func SetAppointmentStatus(ctx context.Context, db *sql.DB, clinicCode string, id int64, status string) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND clinic_code = ?`,
		status, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating appointment status: %w", err)
	}
	return mustAffect(result, "updating appointment status")
}

// DeleteAppointment deletes an appointment.
func DeleteAppointment(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM appointments WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}
	return mustAffect(result, "deleting appointment")
}
