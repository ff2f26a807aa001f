package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const ownerColumns = `id, clinic_code, first_name, last_name, email, phone, address, city, state, zip_code, pid, created_at, updated_at`

func scanOwner(s scanner) (model.Owner, error) {
	var o model.Owner
	err := s.Scan(&o.ID, &o.ClinicCode, &o.FirstName, &o.LastName, &o.Email, &o.Phone,
		&o.Address, &o.City, &o.State, &o.ZipCode, &o.PID, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOwner stamps and inserts a new owner.
func CreateOwner(ctx context.Context, db *sql.DB, o *model.Owner) (*model.Owner, error) {
	if err := tenant.Stamp(ctx, o); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO owners (clinic_code, first_name, last_name, email, phone, address, city, state, zip_code, pid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ClinicCode, o.FirstName, o.LastName, o.Email, o.Phone, o.Address, o.City, o.State, o.ZipCode, o.PID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating owner: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting owner id: %w", err)
	}

	return GetOwner(ctx, db, o.ClinicCode, id)
}

// GetOwner returns an owner of the clinic by ID, or nil.
func GetOwner(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.Owner, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	o, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+ownerColumns+` FROM owners WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanOwner)
	if err != nil {
		return nil, fmt.Errorf("getting owner: %w", err)
	}
	return o, nil
}

// ListOwners returns all owners of the clinic, optionally filtered by a name or email search.
func ListOwners(ctx context.Context, db *sql.DB, clinicCode, search string) ([]model.Owner, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if search != "" {
		like := "%" + search + "%"
		rows, err = db.QueryContext(ctx,
			`SELECT `+ownerColumns+` FROM owners
			 WHERE clinic_code = ? AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)
			 ORDER BY last_name, first_name`, clinicCode, like, like, like,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+ownerColumns+` FROM owners WHERE clinic_code = ? ORDER BY last_name, first_name`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}

	owners, err := collect(rows, scanOwner)
	if err != nil {
		return nil, fmt.Errorf("scanning owner: %w", err)
	}
	return owners, nil
}

// UpdateOwner updates an owner's details.
func UpdateOwner(ctx context.Context, db *sql.DB, clinicCode string, o *model.Owner) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE owners SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?, city = ?,
		     state = ?, zip_code = ?, pid = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ?`,
		o.FirstName, o.LastName, o.Email, o.Phone, o.Address, o.City, o.State, o.ZipCode, o.PID,
		o.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating owner: %w", err)
	}
	return mustAffect(result, "updating owner")
}

// DeleteOwner deletes an owner. Fails if the owner still has pets.
func DeleteOwner(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	for _, dep := range []string{"pets", "invoices"} {
		var count int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+dep+` WHERE owner_id = ? AND clinic_code = ?`, id, clinicCode,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking owner %s: %w", dep, err)
		}
		if count > 0 {
			return fmt.Errorf("cannot delete owner: %w", &HasDependentsError{Kind: dep, Count: count})
		}
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM owners WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting owner: %w", err)
	}
	return mustAffect(result, "deleting owner")
}

// HasDependentsError reports that a record cannot be removed while others reference it.
type HasDependentsError struct {
	Kind  string
	Count int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("still has %d %s", e.Count, e.Kind)
}
