package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, database))

	v, err := Version(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestScopedTablesHaveClinicCode(t *testing.T) {
	database := NewTestDB(t)

	tables := []string{
		"users", "owners", "pets", "veterinarians", "appointments", "invoices",
		"payments", "inventory_items", "vaccinations", "medical_records",
		"prescriptions", "lab_tests", "activities",
	}
	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			var count int
			err := database.QueryRow(
				`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = 'clinic_code' AND "notnull" = 1`, table,
			).Scan(&count)
			require.NoError(t, err)
			assert.Equal(t, 1, count, "table %s must have a non-null clinic_code", table)
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path, prefix string
	}{
		{":memory:", "file::memory:?_pragma="},
		{"klinika.sqlite3", "file:klinika.sqlite3?_pragma="},
		{"file:data.db?mode=rwc", "file:data.db?mode=rwc&_pragma="},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := dsn(tt.path)
			assert.True(t, strings.HasPrefix(got, tt.prefix), got)
			assert.Equal(t, len(connPragmas), strings.Count(got, "_pragma="))
		})
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "klinika.sqlite3"))
	require.NoError(t, err)
	defer database.Close()

	var fk int
	require.NoError(t, database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, database.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int64
	require.NoError(t, database.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, busyTimeout.Milliseconds(), timeout)
}

func TestOpenFailsOnMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "klinika.sqlite3"))
	assert.Error(t, err)
}
