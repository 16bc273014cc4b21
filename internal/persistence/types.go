// Package persistence is the entry point to summary log storage. It re-exports
// the core abstractions and is the only package allowed to import the infra
// table backends.
package persistence

import (
	"biomassoutput/internal/persistence/core"
)

type (
	// Driver identifies a table backend.
	Driver = core.Driver
	// Schema describes one summary log.
	Schema = core.Schema
	// Row is one region at one timestep.
	Row = core.Row
	// Table is an open summary log.
	Table = core.Table
	// Store opens summary logs.
	Store = core.Store
)

const (
	DriverCSV      = core.DriverCSV
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
	DriverMemory   = core.DriverMemory
)

// ErrWidthMismatch reports a row whose value count differs from the species list.
var ErrWidthMismatch = core.ErrWidthMismatch
