package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const prescriptionColumns = `id, clinic_code, pet_id, veterinarian_id, medication_name, dosage, frequency, duration,
	instructions, prescribed_date, status, refills_remaining, notes, created_at`

func scanPrescription(s scanner) (model.Prescription, error) {
	var p model.Prescription
	err := s.Scan(&p.ID, &p.ClinicCode, &p.PetID, &p.VeterinarianID, &p.MedicationName, &p.Dosage,
		&p.Frequency, &p.Duration, &p.Instructions, &p.PrescribedDate, &p.Status, &p.RefillsRemaining,
		&p.Notes, &p.CreatedAt)
	return p, err
}

// CreatePrescription stamps and inserts a new prescription.
func CreatePrescription(ctx context.Context, db *sql.DB, p *model.Prescription) (*model.Prescription, error) {
	if err := tenant.Stamp(ctx, p); err != nil {
		return nil, err
	}
	if p.Status == "" {
		p.Status = model.PrescriptionActive
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO prescriptions (clinic_code, pet_id, veterinarian_id, medication_name, dosage, frequency,
		     duration, instructions, prescribed_date, status, refills_remaining, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClinicCode, p.PetID, p.VeterinarianID, p.MedicationName, p.Dosage, p.Frequency, p.Duration,
		p.Instructions, dbTime(p.PrescribedDate), p.Status, p.RefillsRemaining, p.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting prescription id: %w", err)
	}

	return GetPrescription(ctx, db, p.ClinicCode, id)
}

// GetPrescription returns a prescription of the clinic by ID, or nil.
func GetPrescription(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Prescription, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	p, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanPrescription)
	if err != nil {
		return nil, fmt.Errorf("getting prescription: %w", err)
	}
	return p, nil
}

// ListPrescriptions returns the clinic's prescriptions, optionally for one pet.
func ListPrescriptions(ctx context.Context, db *sql.DB, clinicCode string, petID int64) ([]model.Prescription, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if petID > 0 {
		rows, err = db.QueryContext(ctx,
			`SELECT `+prescriptionColumns+` FROM prescriptions WHERE clinic_code = ? AND pet_id = ?
			 ORDER BY prescribed_date DESC, id DESC`, clinicCode, petID,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+prescriptionColumns+` FROM prescriptions WHERE clinic_code = ?
			 ORDER BY prescribed_date DESC, id DESC`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}

	prescriptions, err := collect(rows, scanPrescription)
	if err != nil {
		return nil, fmt.Errorf("scanning prescription: %w", err)
	}
	return prescriptions, nil
}

// UpdatePrescription updates a prescription.
func UpdatePrescription(ctx context.Context, db *sql.DB, clinicCode string, p *model.Prescription) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE prescriptions SET pet_id = ?, veterinarian_id = ?, medication_name = ?, dosage = ?,
		     frequency = ?, duration = ?, instructions = ?, prescribed_date = ?, status = ?,
		     refills_remaining = ?, notes = ?
		 WHERE id = ? AND clinic_code = ?`,
		p.PetID, p.VeterinarianID, p.MedicationName, p.Dosage, p.Frequency, p.Duration, p.Instructions,
		dbTime(p.PrescribedDate), p.Status, p.RefillsRemaining, p.Notes, p.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating prescription: %w", err)
	}
	return mustAffect(result, "updating prescription")
}

// DeletePrescription deletes a prescription.
func DeletePrescription(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM prescriptions WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting prescription: %w", err)
	}
	return mustAffect(result, "deleting prescription")
}
