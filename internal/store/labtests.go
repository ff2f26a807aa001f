package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const labTestColumns = `id, clinic_code, pet_id, veterinarian_id, test_type, requested_date, completed_date,
	results, status, notes, created_at`

func scanLabTest(s scanner) (model.LabTest, error) {
	var l model.LabTest
	err := s.Scan(&l.ID, &l.ClinicCode, &l.PetID, &l.VeterinarianID, &l.TestType, &l.RequestedDate,
		&l.CompletedDate, &l.Results, &l.Status, &l.Notes, &l.CreatedAt)
	return l, err
}

// CreateLabTest stamps and inserts a new lab test.
func CreateLabTest(ctx context.Context, db *sql.DB, l *model.LabTest) (*model.LabTest, error) {
	if err := tenant.Stamp(ctx, l); err != nil {
		return nil, err
	}
	if l.Status == "" {
		l.Status = model.LabRequested
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO lab_tests (clinic_code, pet_id, veterinarian_id, test_type, requested_date, completed_date,
		     results, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ClinicCode, l.PetID, l.VeterinarianID, l.TestType, dbTime(l.RequestedDate),
		dbTimePtr(l.CompletedDate), l.Results, l.Status, l.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating lab test: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting lab test id: %w", err)
	}

	return GetLabTest(ctx, db, l.ClinicCode, id)
}

// GetLabTest returns a lab test of the clinic by ID, or nil.
func GetLabTest(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.LabTest, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	l, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+labTestColumns+` FROM lab_tests WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanLabTest)
	if err != nil {
		return nil, fmt.Errorf("getting lab test: %w", err)
	}
	return l, nil
}

// ListLabTests returns the clinic's lab tests, optionally for one pet.
func ListLabTests(ctx context.Context, db *sql.DB, clinicCode string, petID int64) ([]model.LabTest, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if petID > 0 {
		rows, err = db.QueryContext(ctx,
			`SELECT `+labTestColumns+` FROM lab_tests WHERE clinic_code = ? AND pet_id = ?
			 ORDER BY requested_date DESC, id DESC`, clinicCode, petID,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+labTestColumns+` FROM lab_tests WHERE clinic_code = ?
			 ORDER BY requested_date DESC, id DESC`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing lab tests: %w", err)
	}

	tests, err := collect(rows, scanLabTest)
	if err != nil {
		return nil, fmt.Errorf("scanning lab test: %w", err)
	}
	return tests, nil
}

// UpdateLabTest updates a lab test.
func UpdateLabTest(ctx context.Context, db *sql.DB, clinicCode string, l *model.LabTest) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE lab_tests SET pet_id = ?, veterinarian_id = ?, test_type = ?, requested_date = ?,
		     completed_date = ?, results = ?, status = ?, notes = ?
		 WHERE id = ? AND clinic_code = ?`,
		l.PetID, l.VeterinarianID, l.TestType, dbTime(l.RequestedDate), dbTimePtr(l.CompletedDate),
		l.Results, l.Status, l.Notes, l.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating lab test: %w", err)
	}
	return mustAffect(result, "updating lab test")
}

// DeleteLabTest deletes a lab test.
func DeleteLabTest(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM lab_tests WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting lab test: %w", err)
	}
	return mustAffect(result, "deleting lab test")
}
