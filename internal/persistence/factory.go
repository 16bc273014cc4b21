package persistence

import (
	"context"
	"fmt"

	"biomassoutput/internal/blob"
	csvstore "biomassoutput/internal/infra/persistence/csv"
	memorystore "biomassoutput/internal/infra/persistence/memory"
	"biomassoutput/internal/infra/persistence/postgres"
	"biomassoutput/internal/infra/persistence/sqlite"
)

// Config selects and configures a table backend.
type Config struct {
	Driver Driver
	// Blobs receives CSV logs when Driver is csv.
	Blobs blob.Store
	// CSVPrefix is prepended to log names in the blob store.
	CSVPrefix   string
	SQLitePath  string
	PostgresDSN string
}

// Open constructs the Store described by cfg. An empty driver selects csv.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverCSV
	}
	switch driver {
	case DriverCSV:
		return csvstore.New(cfg.Blobs, cfg.CSVPrefix)
	case DriverSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case DriverMemory:
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown table driver %s", driver)
	}
}
