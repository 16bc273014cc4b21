package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"biomassoutput/internal/blob"
	"biomassoutput/internal/persistence"
)

// Env holds deployment settings read from BIOMASS_* environment variables.
type Env struct {
	BlobDriver  string `env:"BIOMASS_BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot  string `env:"BIOMASS_BLOB_FS_ROOT" envDefault:"./output"`
	S3Bucket    string `env:"BIOMASS_BLOB_S3_BUCKET"`
	S3Region    string `env:"BIOMASS_BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"BIOMASS_BLOB_S3_ENDPOINT"`
	S3Prefix    string `env:"BIOMASS_BLOB_S3_PREFIX"`
	S3AccessKey string `env:"BIOMASS_BLOB_S3_ACCESS_KEY"`
	S3SecretKey string `env:"BIOMASS_BLOB_S3_SECRET_KEY"`
	S3PathStyle bool   `env:"BIOMASS_BLOB_S3_PATH_STYLE"`

	TableDriver string `env:"BIOMASS_TABLE_DRIVER" envDefault:"csv"`
	// TablePrefix places CSV logs below a blob key prefix.
	TablePrefix string `env:"BIOMASS_TABLE_PREFIX"`
	SQLitePath  string `env:"BIOMASS_SQLITE_PATH" envDefault:"biomass-output.db"`
	PostgresDSN string `env:"BIOMASS_POSTGRES_DSN"`

	OTelEndpoint string `env:"BIOMASS_OTEL_ENDPOINT"`
	MetricsAddr  string `env:"BIOMASS_METRICS_ADDR"`
	LogLevel     string `env:"BIOMASS_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// BlobConfig derives the output blob store configuration.
func (e Env) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(e.BlobDriver),
		FSRoot: e.BlobFSRoot,
		S3: blob.S3Config{
			Region:          e.S3Region,
			Bucket:          e.S3Bucket,
			Prefix:          e.S3Prefix,
			Endpoint:        e.S3Endpoint,
			AccessKeyID:     e.S3AccessKey,
			SecretAccessKey: e.S3SecretKey,
			PathStyle:       e.S3PathStyle,
		},
	}
}

// TableConfig derives the summary log store configuration; CSV logs go to blobs.
func (e Env) TableConfig(blobs blob.Store) persistence.Config {
	return persistence.Config{
		Driver:      persistence.Driver(e.TableDriver),
		Blobs:       blobs,
		CSVPrefix:   e.TablePrefix,
		SQLitePath:  e.SQLitePath,
		PostgresDSN: e.PostgresDSN,
	}
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
