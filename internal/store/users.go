package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

const userColumns = `id, clinic_code, name, email, password_hash, role, created_at, deleted_at`

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.ClinicCode, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	return u, err
}

// CreateUser stamps and inserts a new user. Emails are stored lower-case.
func CreateUser(ctx context.Context, db *sql.DB, u *model.User) (*model.User, error) {
	if err := tenant.Stamp(ctx, u); err != nil {
		return nil, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (clinic_code, name, email, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		u.ClinicCode, u.Name, u.Email, u.PasswordHash, u.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, u.ClinicCode, id)
}

// GetUser returns a user of the clinic by ID, or nil. Deleted users are returned
// with DeletedAt set.
func GetUser(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.User, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	u, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanUser)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the active user with the given email across all
// clinics, or nil. Login runs before a clinic is known, so this lookup is
// deliberately unscoped.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`,
		strings.ToLower(strings.TrimSpace(email)),
	), scanUser)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all active users of the clinic.
func ListUsers(ctx context.Context, db *sql.DB, clinicCode string) ([]model.User, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE clinic_code = ? AND deleted_at IS NULL ORDER BY name`, clinicCode,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return users, nil
}

// UpdateUser updates a user's name and role.
func UpdateUser(ctx context.Context, db *sql.DB, clinicCode string, id int64, name, role string) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, role = ? WHERE id = ? AND clinic_code = ? AND deleted_at IS NULL`,
		name, role, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return mustAffect(result, "updating user")
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, clinicCode string, id int64, passwordHash string) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND clinic_code = ? AND deleted_at IS NULL`,
		passwordHash, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return mustAffect(result, "updating user password")
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND clinic_code = ? AND deleted_at IS NULL`,
		id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return mustAffect(result, "deleting user")
}

// GetUserPermissions returns the stored permission override for a user, or nil
// if the user has none and role defaults apply.
func GetUserPermissions(ctx context.Context, db *sql.DB, clinicCode string, userID int64) (*model.Permissions, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	p, err := scanOne(db.QueryRowContext(ctx,
		`SELECT appointments, pets, owners, records, inventory, billing, reports, settings
		 FROM user_permissions WHERE user_id = ? AND clinic_code = ?`, userID, clinicCode,
	), func(s scanner) (model.Permissions, error) {
		var p model.Permissions
		err := s.Scan(&p.Appointments, &p.Pets, &p.Owners, &p.Records, &p.Inventory, &p.Billing, &p.Reports, &p.Settings)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting user permissions: %w", err)
	}
	return p, nil
}

// SetUserPermissions stores a permission override for a user of the clinic.
func SetUserPermissions(ctx context.Context, db *sql.DB, clinicCode string, userID int64, p model.Permissions) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ? AND clinic_code = ? AND deleted_at IS NULL`, userID, clinicCode,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking user: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("setting user permissions: %w", ErrNotFound)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO user_permissions (user_id, clinic_code, appointments, pets, owners, records, inventory,
		     billing, reports, settings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET appointments = excluded.appointments, pets = excluded.pets,
		     owners = excluded.owners, records = excluded.records, inventory = excluded.inventory,
		     billing = excluded.billing, reports = excluded.reports, settings = excluded.settings`,
		userID, clinicCode, p.Appointments, p.Pets, p.Owners, p.Records, p.Inventory, p.Billing, p.Reports, p.Settings,
	)
	if err != nil {
		return fmt.Errorf("setting user permissions: %w", err)
	}
	return nil
}
