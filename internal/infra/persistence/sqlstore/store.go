// Package sqlstore implements summary logs over database/sql. The sqlite and
// postgres packages supply the connection and a Dialect; the table layout is
// shared:
//
//	summary_logs(name, region_column, description, species)
//	summary_rows(log, seq, sim_time, region, active_sites, biomass)
//
// species and biomass hold JSON arrays so the row width follows the species
// list of each log.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"biomassoutput/internal/persistence/core"
)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	Driver core.Driver
	// JSONType is the column type used for JSON payloads.
	JSONType string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

// QuestionMarks renders every placeholder as ?.
func QuestionMarks(int) string { return "?" }

// Dollar renders placeholders as $1, $2, ...
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Store implements core.Store on a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// New ensures the log tables exist and returns the store.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore requires a database handle")
	}
	if dialect.Placeholder == nil {
		dialect.Placeholder = QuestionMarks
	}
	if dialect.JSONType == "" {
		dialect.JSONType = "TEXT"
	}
	s := &Store{db: db, dialect: dialect}
	if err := s.ensureTables(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Driver returns the dialect's driver identifier.
func (s *Store) Driver() core.Driver { return s.dialect.Driver }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureTables(ctx context.Context) error {
	ddl := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS summary_logs (
		name TEXT PRIMARY KEY,
		region_column TEXT NOT NULL,
		description TEXT NOT NULL,
		species %s NOT NULL
	)`, s.dialect.JSONType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS summary_rows (
		log TEXT NOT NULL,
		seq INTEGER NOT NULL,
		sim_time INTEGER NOT NULL,
		region TEXT NOT NULL,
		active_sites INTEGER NOT NULL,
		biomass %s NOT NULL,
		PRIMARY KEY (log, seq)
	)`, s.dialect.JSONType),
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure summary tables: %w", err)
		}
	}
	return nil
}

func (s *Store) params(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.dialect.Placeholder(i + 1)
	}
	return strings.Join(parts, ",")
}

// Open registers the log and clears rows left by an earlier run.
func (s *Store) Open(ctx context.Context, schema core.Schema) (core.Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	species, err := json.Marshal(schema.Species)
	if err != nil {
		return nil, fmt.Errorf("encode species: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	upsert := `INSERT INTO summary_logs(name,region_column,description,species) VALUES(` + s.params(4) +
		`) ON CONFLICT(name) DO UPDATE SET region_column=EXCLUDED.region_column, description=EXCLUDED.description, species=EXCLUDED.species`
	if _, err := tx.ExecContext(ctx, upsert, schema.Name, schema.RegionColumn, schema.Description, string(species)); err != nil {
		return nil, fmt.Errorf("register log %s: %w", schema.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summary_rows WHERE log = `+s.dialect.Placeholder(1), schema.Name); err != nil {
		return nil, fmt.Errorf("reset log %s: %w", schema.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return &table{store: s, schema: schema}, nil
}

type table struct {
	store  *Store
	schema core.Schema
	mu     sync.Mutex
	seq    int
}

func (t *table) Schema() core.Schema { return t.schema }

func (t *table) Append(ctx context.Context, rows []core.Row) error {
	if err := core.CheckRows(t.schema, rows); err != nil {
		return fmt.Errorf("append %s: %w", t.schema.Name, err)
	}
	if len(rows) == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	db := t.store.db
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	insert := `INSERT INTO summary_rows(log,seq,sim_time,region,active_sites,biomass) VALUES(` + t.store.params(6) + `)`
	seq := t.seq
	for _, r := range rows {
		payload, err := json.Marshal(r.AboveGroundBiomass)
		if err != nil {
			return fmt.Errorf("encode biomass: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, t.schema.Name, seq, r.Time, r.Region, r.NumActiveSites, string(payload)); err != nil {
			return fmt.Errorf("insert %s row: %w", t.schema.Name, err)
		}
		seq++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	t.seq = seq
	return nil
}

func (t *table) Rows(ctx context.Context) ([]core.Row, error) {
	query := `SELECT seq, sim_time, region, active_sites, biomass FROM summary_rows WHERE log = ` +
		t.store.dialect.Placeholder(1) + ` ORDER BY seq`
	rows, err := t.store.db.QueryContext(ctx, query, t.schema.Name)
	if err != nil {
		return nil, fmt.Errorf("select %s rows: %w", t.schema.Name, err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Row
	for rows.Next() {
		var (
			seq     int
			r       core.Row
			payload []byte
		)
		if err := rows.Scan(&seq, &r.Time, &r.Region, &r.NumActiveSites, &payload); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t.schema.Name, err)
		}
		if err := json.Unmarshal(payload, &r.AboveGroundBiomass); err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", t.schema.Name, seq, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", t.schema.Name, err)
	}
	return out, nil
}
