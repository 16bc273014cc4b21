package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"biomassoutput/internal/blob"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		cfg  Config
		want Driver
	}{
		{"default csv", Config{Blobs: blob.NewMemory()}, DriverCSV},
		{"memory", Config{Driver: DriverMemory}, DriverMemory},
		{"sqlite", Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "logs.db")}, DriverSQLite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer func() { _ = s.Close() }()
			if s.Driver() != tc.want {
				t.Fatalf("got driver %s want %s", s.Driver(), tc.want)
			}
			tbl, err := s.Open(ctx, Schema{Name: "spp-biomass-log.csv", RegionColumn: "EcoName", Species: []string{"a"}})
			if err != nil {
				t.Fatalf("open table: %v", err)
			}
			if err := tbl.Append(ctx, []Row{{Time: 1, Region: "eco", NumActiveSites: 1, AboveGroundBiomass: []float64{4}}}); err != nil {
				t.Fatalf("append: %v", err)
			}
			rows, err := tbl.Rows(ctx)
			if err != nil || len(rows) != 1 || rows[0].AboveGroundBiomass[0] != 4 {
				t.Fatalf("rows %+v err %v", rows, err)
			}
		})
	}
}

func TestOpenRejectsUnknownDriverAndMissingBlobs(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "bogus"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatalf("expected csv driver to require a blob store")
	}
}
