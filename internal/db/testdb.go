package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB returns a migrated in-memory database that is closed when the
// test ends.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	database, err := Open(":memory:")
	require.NoError(tb, err, "opening test database")
	tb.Cleanup(func() { database.Close() })

	require.NoError(tb, Migrate(context.Background(), database), "migrating test database")
	return database
}
