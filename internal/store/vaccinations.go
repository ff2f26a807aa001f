package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const vaccinationColumns = `id, clinic_code, pet_id, veterinarian_id, vaccine_type, administered_date,
	next_due_date, batch_number, notes, status, created_at`

func scanVaccination(s scanner) (model.Vaccination, error) {
	var v model.Vaccination
	err := s.Scan(&v.ID, &v.ClinicCode, &v.PetID, &v.VeterinarianID, &v.VaccineType, &v.AdministeredDate,
		&v.NextDueDate, &v.BatchNumber, &v.Notes, &v.Status, &v.CreatedAt)
	return v, err
}

// CreateVaccination stamps and inserts a new vaccination.
func CreateVaccination(ctx context.Context, db *sql.DB, v *model.Vaccination) (*model.Vaccination, error) {
	if err := tenant.Stamp(ctx, v); err != nil {
		return nil, err
	}
	if v.Status == "" {
		v.Status = model.VaccinationScheduled
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO vaccinations (clinic_code, pet_id, veterinarian_id, vaccine_type, administered_date,
		     next_due_date, batch_number, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ClinicCode, v.PetID, v.VeterinarianID, v.VaccineType, dbTimePtr(v.AdministeredDate),
		dbTimePtr(v.NextDueDate), v.BatchNumber, v.Notes, v.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating vaccination: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting vaccination id: %w", err)
	}

	return GetVaccination(ctx, db, v.ClinicCode, id)
}

// GetVaccination returns a vaccination of the clinic by ID, or nil.
func GetVaccination(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Vaccination, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	v, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+vaccinationColumns+` FROM vaccinations WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanVaccination)
	if err != nil {
		return nil, fmt.Errorf("getting vaccination: %w", err)
	}
	return v, nil
}

// ListVaccinations returns the clinic's vaccinations, optionally for one pet.
func ListVaccinations(ctx context.Context, db *sql.DB, clinicCode string, petID int64) ([]model.Vaccination, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if petID > 0 {
		rows, err = db.QueryContext(ctx,
			`SELECT `+vaccinationColumns+` FROM vaccinations WHERE clinic_code = ? AND pet_id = ? ORDER BY id DESC`,
			clinicCode, petID,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+vaccinationColumns+` FROM vaccinations WHERE clinic_code = ? ORDER BY id DESC`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing vaccinations: %w", err)
	}

	vaccinations, err := collect(rows, scanVaccination)
	if err != nil {
		return nil, fmt.Errorf("scanning vaccination: %w", err)
	}
	return vaccinations, nil
}

// UpdateVaccination updates a vaccination.
func UpdateVaccination(ctx context.Context, db *sql.DB, clinicCode string, v *model.Vaccination) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE vaccinations SET pet_id = ?, veterinarian_id = ?, vaccine_type = ?, administered_date = ?,
		     next_due_date = ?, batch_number = ?, notes = ?, status = ?
		 WHERE id = ? AND clinic_code = ?`,
		v.PetID, v.VeterinarianID, v.VaccineType, dbTimePtr(v.AdministeredDate), dbTimePtr(v.NextDueDate),
		v.BatchNumber, v.Notes, v.Status, v.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating vaccination: %w", err)
	}
	return mustAffect(result, "updating vaccination")
}

// DeleteVaccination deletes a vaccination.
func DeleteVaccination(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM vaccinations WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting vaccination: %w", err)
	}
	return mustAffect(result, "deleting vaccination")
}
