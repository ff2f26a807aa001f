// Package store implements clinic-scoped persistence on SQLite.
//
// Every function operating on clinic data takes the clinic code explicitly
// and rejects an empty one with tenant.ErrUnresolved before querying. Reads
// filter by clinic_code, so a record owned by another clinic is reported
// exactly like a missing one. Updates never write clinic_code.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/klinika/internal/tenant"
)

var (
	// ErrNotFound is returned by updates and deletes that matched no row for the clinic.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write collides with a unique key.
	ErrDuplicate = errors.New("already exists")
)

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

type scanner interface {
	Scan(dest ...any) error
}

func requireClinic(clinicCode string) error {
	if clinicCode == "" {
		return tenant.ErrUnresolved
	}
	return nil
}

// collect scans all rows and closes them before returning.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// scanOne wraps a single-row scan, mapping sql.ErrNoRows to (nil, nil).
func scanOne[T any](row *sql.Row, scan func(scanner) (T, error)) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// mustAffect returns ErrNotFound when the statement changed nothing.
func mustAffect(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// dbTime normalizes times so stored values sort lexically.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dbTime(*t)
	return &v
}
