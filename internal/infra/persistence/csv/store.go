// Package csv writes summary logs as CSV files into the output blob store.
// The blob interface only supports whole-object writes, so each append
// re-renders the log and replaces the stored object.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	blobcore "biomassoutput/internal/blob/core"
	"biomassoutput/internal/persistence/core"
)

const contentType = "text/csv"

// Store implements core.Store on top of a blob store.
type Store struct {
	blobs blobcore.Store
	// Prefix is prepended to every log name, for example "logs/".
	prefix string
}

// New returns a CSV log store writing below prefix in blobs.
func New(blobs blobcore.Store, prefix string) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("csv store requires a blob store")
	}
	return &Store{blobs: blobs, prefix: prefix}, nil
}

// Driver returns the table driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverCSV }

// Close is a no-op; the blob store outlives the logs.
func (s *Store) Close() error { return nil }

// Open writes the header row, truncating any earlier log at the same key.
func (s *Store) Open(ctx context.Context, schema core.Schema) (core.Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	t := &table{blobs: s.blobs, key: s.prefix + schema.Name, schema: schema}
	if err := t.flush(ctx, nil); err != nil {
		return nil, err
	}
	return t, nil
}

type table struct {
	mu      sync.Mutex
	blobs   blobcore.Store
	key     string
	schema  core.Schema
	records [][]string
}

func (t *table) Schema() core.Schema { return t.schema }

func (t *table) Append(ctx context.Context, rows []core.Row) error {
	if err := core.CheckRows(t.schema, rows); err != nil {
		return fmt.Errorf("append %s: %w", t.key, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := make([][]string, 0, len(rows))
	for _, r := range rows {
		pending = append(pending, formatRow(r))
	}
	if err := t.flush(ctx, pending); err != nil {
		return err
	}
	t.records = append(t.records, pending...)
	return nil
}

// flush stores header + records + pending; the in-memory records only grow
// after the blob write succeeded.
func (t *table) flush(ctx context.Context, pending [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.schema.Header()); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := w.WriteAll(t.records); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := w.WriteAll(pending); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	meta := map[string]string{"description": t.schema.Description}
	if t.schema.Description == "" {
		meta = nil
	}
	if _, err := t.blobs.Put(ctx, t.key, &buf, blobcore.PutOptions{ContentType: contentType, Metadata: meta}); err != nil {
		return fmt.Errorf("write %s: %w", t.key, err)
	}
	return nil
}

// Rows reads the stored log back.
func (t *table) Rows(ctx context.Context) ([]core.Row, error) {
	_, rc, err := t.blobs.Get(ctx, t.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.key, err)
	}
	defer func() { _ = rc.Close() }()
	return decode(rc, len(t.schema.Species))
}

func formatRow(r core.Row) []string {
	rec := make([]string, 0, 3+len(r.AboveGroundBiomass))
	rec = append(rec, strconv.Itoa(r.Time), r.Region, strconv.Itoa(r.NumActiveSites))
	for _, v := range r.AboveGroundBiomass {
		rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return rec
}

func decode(r io.Reader, species int) ([]core.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3 + species
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("decode csv: missing header")
	}
	out := make([]core.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decode csv line %d: %w", i+2, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseRecord(rec []string) (core.Row, error) {
	tm, err := strconv.Atoi(rec[0])
	if err != nil {
		return core.Row{}, fmt.Errorf("time: %w", err)
	}
	n, err := strconv.Atoi(rec[2])
	if err != nil {
		return core.Row{}, fmt.Errorf("active sites: %w", err)
	}
	values := make([]float64, 0, len(rec)-3)
	for _, f := range rec[3:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return core.Row{}, fmt.Errorf("biomass: %w", err)
		}
		values = append(values, v)
	}
	return core.Row{Time: tm, Region: rec[1], NumActiveSites: n, AboveGroundBiomass: values}, nil
}
