package config

import (
	"strings"
	"testing"

	"biomassoutput/internal/blob"
	"biomassoutput/internal/persistence"
)

func TestLoadEnvDefaults(t *testing.T) {
	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if e.BlobDriver != "fs" || e.BlobFSRoot != "./output" || e.TableDriver != "csv" || e.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", e)
	}
	cfg := e.BlobConfig()
	if cfg.Driver != blob.DriverFilesystem || cfg.S3.Region != "us-east-1" {
		t.Fatalf("unexpected blob config %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BIOMASS_BLOB_DRIVER", "s3")
	t.Setenv("BIOMASS_BLOB_S3_BUCKET", "runs")
	t.Setenv("BIOMASS_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("BIOMASS_TABLE_DRIVER", "postgres")
	t.Setenv("BIOMASS_POSTGRES_DSN", "postgres://db/biomass")
	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	bc := e.BlobConfig()
	if bc.Driver != blob.DriverS3 || bc.S3.Bucket != "runs" || !bc.S3.PathStyle {
		t.Fatalf("unexpected blob config %+v", bc)
	}
	tc := e.TableConfig(nil)
	if tc.Driver != persistence.DriverPostgres || tc.PostgresDSN != "postgres://db/biomass" {
		t.Fatalf("unexpected table config %+v", tc)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("BIOMASS_BLOB_S3_PATH_STYLE", "sometimes")
	_, err := LoadEnv()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
