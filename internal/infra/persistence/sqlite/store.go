// Package sqlite keeps summary logs in an embedded sqlite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"biomassoutput/internal/infra/persistence/sqlstore"
	"biomassoutput/internal/persistence/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Dialect is the sqlite flavour of the shared log tables.
var Dialect = sqlstore.Dialect{Driver: core.DriverSQLite, JSONType: "TEXT", Placeholder: sqlstore.QuestionMarks}

// NewStore opens (creating if needed) the database at path.
func NewStore(ctx context.Context, path string) (*sqlstore.Store, error) {
	if path == "" {
		path = "biomass-output.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between the two logs
	db.SetMaxOpenConns(1)
	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
