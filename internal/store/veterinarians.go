package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const vetColumns = `id, clinic_code, name, specialization, email, phone, created_at`

func scanVeterinarian(s scanner) (model.Veterinarian, error) {
	var v model.Veterinarian
	err := s.Scan(&v.ID, &v.ClinicCode, &v.Name, &v.Specialization, &v.Email, &v.Phone, &v.CreatedAt)
	return v, err
}

// CreateVeterinarian stamps and inserts a new veterinarian.
func CreateVeterinarian(ctx context.Context, db *sql.DB, v *model.Veterinarian) (*model.Veterinarian, error) {
	if err := tenant.Stamp(ctx, v); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO veterinarians (clinic_code, name, specialization, email, phone) VALUES (?, ?, ?, ?, ?)`,
		v.ClinicCode, v.Name, v.Specialization, v.Email, v.Phone,
	)
	if err != nil {
		return nil, fmt.Errorf("creating veterinarian: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting veterinarian id: %w", err)
	}

	return GetVeterinarian(ctx, db, v.ClinicCode, id)
}

// GetVeterinarian returns a veterinarian of the clinic by ID, or nil.
func GetVeterinarian(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Veterinarian, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	v, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+vetColumns+` FROM veterinarians WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanVeterinarian)
	if err != nil {
		return nil, fmt.Errorf("getting veterinarian: %w", err)
	}
	return v, nil
}

// ListVeterinarians returns all veterinarians of the clinic.
func ListVeterinarians(ctx context.Context, db *sql.DB, clinicCode string) ([]model.Veterinarian, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+vetColumns+` FROM veterinarians WHERE clinic_code = ? ORDER BY name`, clinicCode,
	)
	if err != nil {
		return nil, fmt.Errorf("listing veterinarians: %w", err)
	}

	vets, err := collect(rows, scanVeterinarian)
	if err != nil {
		return nil, fmt.Errorf("scanning veterinarian: %w", err)
	}
	return vets, nil
}

// UpdateVeterinarian updates a veterinarian's details.
func UpdateVeterinarian(ctx context.Context, db *sql.DB, clinicCode string, v *model.Veterinarian) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE veterinarians SET name = ?, specialization = ?, email = ?, phone = ?
		 WHERE id = ? AND clinic_code = ?`,
		v.Name, v.Specialization, v.Email, v.Phone, v.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating veterinarian: %w", err)
	}
	return mustAffect(result, "updating veterinarian")
}

// DeleteVeterinarian deletes a veterinarian; references to them are cleared.
func DeleteVeterinarian(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM veterinarians WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting veterinarian: %w", err)
	}
	return mustAffect(result, "deleting veterinarian")
}
