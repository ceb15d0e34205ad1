// Package db stores analysis runs in a local SQLite database so past results
// can be listed and re-served without recomputing them.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection to the results store.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the results database at path and applies the
// connection pragmas. The schema is managed by migrations; call MigrateUp
// before first use.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps readers unblocked while a run is being recorded.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	return &DB{sqldb}, nil
}
