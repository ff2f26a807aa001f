package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const petColumns = `id, clinic_code, owner_id, name, species, breed, color, date_of_birth, gender, weight,
	microchip_id, photo_mime, created_at, updated_at`

func scanPet(s scanner) (model.Pet, error) {
	var p model.Pet
	err := s.Scan(&p.ID, &p.ClinicCode, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.Color,
		&p.DateOfBirth, &p.Gender, &p.Weight, &p.MicrochipID, &p.PhotoMIME, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePet stamps and inserts a new pet.
func CreatePet(ctx context.Context, db *sql.DB, p *model.Pet) (*model.Pet, error) {
	if err := tenant.Stamp(ctx, p); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO pets (clinic_code, owner_id, name, species, breed, color, date_of_birth, gender, weight, microchip_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClinicCode, p.OwnerID, p.Name, p.Species, p.Breed, p.Color, dbTimePtr(p.DateOfBirth),
		p.Gender, p.Weight, p.MicrochipID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating pet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting pet id: %w", err)
	}

	return GetPet(ctx, db, p.ClinicCode, id)
}

// GetPet returns a pet of the clinic by ID, or nil.
func GetPet(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Pet, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	p, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanPet)
	if err != nil {
		return nil, fmt.Errorf("getting pet: %w", err)
	}
	return p, nil
}

// ListPets returns the clinic's pets, optionally only those of one owner.
func ListPets(ctx context.Context, db *sql.DB, clinicCode string, ownerID int64) ([]model.Pet, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if ownerID > 0 {
		rows, err = db.QueryContext(ctx,
			`SELECT `+petColumns+` FROM pets WHERE clinic_code = ? AND owner_id = ? ORDER BY name`,
			clinicCode, ownerID,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+petColumns+` FROM pets WHERE clinic_code = ? ORDER BY name`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}

	pets, err := collect(rows, scanPet)
	if err != nil {
		return nil, fmt.Errorf("scanning pet: %w", err)
	}
	return pets, nil
}

// UpdatePet updates a pet's details.
func UpdatePet(ctx context.Context, db *sql.DB, clinicCode string, p *model.Pet) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE pets SET owner_id = ?, name = ?, species = ?, breed = ?, color = ?, date_of_birth = ?,
		     gender = ?, weight = ?, microchip_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ?`,
		p.OwnerID, p.Name, p.Species, p.Breed, p.Color, dbTimePtr(p.DateOfBirth),
		p.Gender, p.Weight, p.MicrochipID, p.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating pet: %w", err)
	}
	return mustAffect(result, "updating pet")
}

// DeletePet deletes a pet together with its clinical history.
func DeletePet(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM pets WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}
	return mustAffect(result, "deleting pet")
}

// SetPetPhoto stores a processed photo for a pet.
func SetPetPhoto(ctx context.Context, db *sql.DB, clinicCode string, id int64, data []byte, mime string) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE pets SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ?`,
		data, mime, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("setting pet photo: %w", err)
	}
	return mustAffect(result, "setting pet photo")
}

// GetPetPhoto returns a pet's photo and its MIME type. Data is nil when the
// pet has no photo or does not belong to the clinic.
func GetPetPhoto(ctx context.Context, db *sql.DB, clinicCode string, id int64) ([]byte, string, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, "", err
	}

	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM pets WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting pet photo: %w", err)
	}
	return data, mime, nil
}
