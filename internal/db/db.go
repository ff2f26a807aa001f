// Package db opens the clinic database and owns its schema migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// busyTimeout is how long a connection waits on a locked database.
const busyTimeout = 5 * time.Second

// connPragmas run on every new connection through the DSN.
var connPragmas = []string{
	"foreign_keys(1)",
	fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()),
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// Open opens the SQLite database at path and checks that it is reachable.
// ":memory:" gives a private database that lives as long as the handle.
//
// All access goes through one connection, so writes from concurrent requests
// queue in the pool instead of failing with SQLITE_BUSY.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	database.SetMaxOpenConns(1)
	database.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), busyTimeout)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	return database, nil
}

func dsn(path string) string {
	q := url.Values{"_pragma": connPragmas}
	if path == ":memory:" {
		return "file::memory:?" + q.Encode()
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + q.Encode()
	}
	return "file:" + path + "?" + q.Encode()
}
