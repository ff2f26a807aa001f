package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
)

const clinicColumns = `id, clinic_code, clinic_name, address, phone, email, timezone, appointment_duration,
	working_hours_start, working_hours_end, email_notifications, sms_notifications, appointment_reminders,
	auto_backup, backup_frequency, theme, created_at, updated_at`

func scanClinic(s scanner) (model.Clinic, error) {
	var c model.Clinic
	err := s.Scan(&c.ID, &c.ClinicCode, &c.ClinicName, &c.Address, &c.Phone, &c.Email, &c.Timezone,
		&c.AppointmentDuration, &c.WorkingHoursStart, &c.WorkingHoursEnd, &c.EmailNotifications,
		&c.SMSNotifications, &c.AppointmentReminders, &c.AutoBackup, &c.BackupFrequency, &c.Theme,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateClinic inserts a new clinic. The clinic code must be set and unique.
func CreateClinic(ctx context.Context, db *sql.DB, c *model.Clinic) (*model.Clinic, error) {
	if err := requireClinic(c.ClinicCode); err != nil {
		return nil, err
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO clinics (clinic_code, clinic_name, address, phone, email, timezone, appointment_duration,
		     working_hours_start, working_hours_end, email_notifications, sms_notifications,
		     appointment_reminders, auto_backup, backup_frequency, theme)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClinicCode, c.ClinicName, c.Address, c.Phone, c.Email, c.Timezone, c.AppointmentDuration,
		c.WorkingHoursStart, c.WorkingHoursEnd, c.EmailNotifications, c.SMSNotifications,
		c.AppointmentReminders, c.AutoBackup, c.BackupFrequency, c.Theme,
	)
	if err != nil {
		return nil, fmt.Errorf("creating clinic: %w", err)
	}

	return GetClinic(ctx, db, c.ClinicCode)
}

// GetClinic returns the clinic with the given code, or nil.
func GetClinic(ctx context.Context, db *sql.DB, clinicCode string) (*model.Clinic, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	c, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+clinicColumns+` FROM clinics WHERE clinic_code = ?`, clinicCode,
	), scanClinic)
	if err != nil {
		return nil, fmt.Errorf("getting clinic: %w", err)
	}
	return c, nil
}

// ListClinics returns all clinics.
func ListClinics(ctx context.Context, db *sql.DB) ([]model.Clinic, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+clinicColumns+` FROM clinics ORDER BY clinic_name`)
	if err != nil {
		return nil, fmt.Errorf("listing clinics: %w", err)
	}

	clinics, err := collect(rows, scanClinic)
	if err != nil {
		return nil, fmt.Errorf("scanning clinic: %w", err)
	}
	return clinics, nil
}

// UpdateClinic updates a clinic's settings. The clinic code itself never changes.
func UpdateClinic(ctx context.Context, db *sql.DB, clinicCode string, c *model.Clinic) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE clinics SET clinic_name = ?, address = ?, phone = ?, email = ?, timezone = ?,
		     appointment_duration = ?, working_hours_start = ?, working_hours_end = ?,
		     email_notifications = ?, sms_notifications = ?, appointment_reminders = ?, auto_backup = ?,
		     backup_frequency = ?, theme = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE clinic_code = ?`,
		c.ClinicName, c.Address, c.Phone, c.Email, c.Timezone, c.AppointmentDuration,
		c.WorkingHoursStart, c.WorkingHoursEnd, c.EmailNotifications, c.SMSNotifications,
		c.AppointmentReminders, c.AutoBackup, c.BackupFrequency, c.Theme, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating clinic: %w", err)
	}
	return mustAffect(result, "updating clinic")
}
