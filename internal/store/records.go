package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const recordColumns = `id, clinic_code, pet_id, veterinarian_id, record_date, type, title, description, notes,
	status, created_at`

func scanMedicalRecord(s scanner) (model.MedicalRecord, error) {
	var r model.MedicalRecord
	err := s.Scan(&r.ID, &r.ClinicCode, &r.PetID, &r.VeterinarianID, &r.RecordDate, &r.Type, &r.Title,
		&r.Description, &r.Notes, &r.Status, &r.CreatedAt)
	return r, err
}

// CreateMedicalRecord stamps and inserts a new medical record.
func CreateMedicalRecord(ctx context.Context, db *sql.DB, r *model.MedicalRecord) (*model.MedicalRecord, error) {
	if err := tenant.Stamp(ctx, r); err != nil {
		return nil, err
	}
	if r.Status == "" {
		r.Status = model.RecordPending
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO medical_records (clinic_code, pet_id, veterinarian_id, record_date, type, title,
		     description, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ClinicCode, r.PetID, r.VeterinarianID, dbTime(r.RecordDate), r.Type, r.Title,
		r.Description, r.Notes, r.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating medical record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting medical record id: %w", err)
	}

	return GetMedicalRecord(ctx, db, r.ClinicCode, id)
}

// GetMedicalRecord returns a medical record of the clinic by ID, or nil.
func GetMedicalRecord(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.MedicalRecord, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	r, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM medical_records WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanMedicalRecord)
	if err != nil {
		return nil, fmt.Errorf("getting medical record: %w", err)
	}
	return r, nil
}

// ListMedicalRecords returns the clinic's medical records, newest first,
// optionally for one pet.
func ListMedicalRecords(ctx context.Context, db *sql.DB, clinicCode string, petID int64) ([]model.MedicalRecord, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if petID > 0 {
		rows, err = db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM medical_records WHERE clinic_code = ? AND pet_id = ?
			 ORDER BY record_date DESC, id DESC`, clinicCode, petID,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM medical_records WHERE clinic_code = ?
			 ORDER BY record_date DESC, id DESC`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing medical records: %w", err)
	}

	records, err := collect(rows, scanMedicalRecord)
	if err != nil {
		return nil, fmt.Errorf("scanning medical record: %w", err)
	}
	return records, nil
}

// UpdateMedicalRecord updates a medical record.
func UpdateMedicalRecord(ctx context.Context, db *sql.DB, clinicCode string, r *model.MedicalRecord) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE medical_records SET pet_id = ?, veterinarian_id = ?, record_date = ?, type = ?, title = ?,
		     description = ?, notes = ?, status = ?
		 WHERE id = ? AND clinic_code = ?`,
		r.PetID, r.VeterinarianID, dbTime(r.RecordDate), r.Type, r.Title, r.Description, r.Notes, r.Status,
		r.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating medical record: %w", err)
	}
	return mustAffect(result, "updating medical record")
}

// DeleteMedicalRecord deletes a medical record.
func DeleteMedicalRecord(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM medical_records WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting medical record: %w", err)
	}
	return mustAffect(result, "deleting medical record")
}
