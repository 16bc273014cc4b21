// Package core defines the summary log abstraction. A log is an append-only
// table of per-region biomass rows, one log per grouping mode.
package core

import (
	"context"
	"errors"
	"fmt"
)

// Driver identifies a concrete table backend.
type Driver string

const (
	// DriverCSV writes each log as a CSV file into the output blob store.
	DriverCSV Driver = "csv"
	// DriverSQLite keeps logs in an embedded sqlite database.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres keeps logs in a Postgres database.
	DriverPostgres Driver = "postgres"
	// DriverMemory keeps logs in process memory (tests).
	DriverMemory Driver = "memory"
)

// Schema describes one summary log.
type Schema struct {
	// Name is the log file name, for example spp-biomass-log.csv.
	Name        string
	Description string
	// RegionColumn labels the region id column (EcoName, ManagementAreaMapCode).
	RegionColumn string
	Species      []string
}

// BiomassColumnPrefix precedes each species name in the header.
const BiomassColumnPrefix = "AboveGroundBiomass_"

// Header returns the column names in output order.
func (s Schema) Header() []string {
	out := make([]string, 0, 3+len(s.Species))
	out = append(out, "Time", s.RegionColumn, "NumActiveSites")
	for _, sp := range s.Species {
		out = append(out, BiomassColumnPrefix+sp)
	}
	return out
}

// Validate reports schema problems before a backend is touched.
func (s Schema) Validate() error {
	if s.Name == "" {
		return errors.New("schema name required")
	}
	if s.RegionColumn == "" {
		return errors.New("schema region column required")
	}
	return nil
}

// Row is one region at one timestep.
type Row struct {
	Time           int
	Region         string
	NumActiveSites int
	// AboveGroundBiomass holds the mean per species, in Schema.Species order.
	AboveGroundBiomass []float64
}

// Table is an open summary log. Rows appended across timesteps accumulate.
type Table interface {
	Schema() Schema
	Append(ctx context.Context, rows []Row) error
	// Rows returns every appended row in append order.
	Rows(ctx context.Context) ([]Row, error)
}

// Store opens summary logs. Opening a log starts it empty.
type Store interface {
	Open(ctx context.Context, schema Schema) (Table, error)
	Driver() Driver
	Close() error
}

// ErrWidthMismatch is returned when a row does not carry one value per species.
var ErrWidthMismatch = errors.New("persistence: row width does not match schema")

// CheckRows validates rows against the schema.
func CheckRows(schema Schema, rows []Row) error {
	for i, r := range rows {
		if len(r.AboveGroundBiomass) != len(schema.Species) {
			return fmt.Errorf("%s row %d: got %d values for %d species: %w", schema.Name, i, len(r.AboveGroundBiomass), len(schema.Species), ErrWidthMismatch)
		}
	}
	return nil
}
