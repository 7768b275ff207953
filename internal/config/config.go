package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration for the salesd binary.
//
// It is loaded from a YAML file; every field has a usable default so an empty
// (or missing) file yields a working local setup backed by SQLite.
type Config struct {
	// Listen is the HTTP listen address for `salesd serve`.
	Listen string `yaml:"listen"`

	Storage StorageConfig `yaml:"storage"`
	Loader  LoaderConfig  `yaml:"loader"`
	Metrics MetricsConfig `yaml:"metrics"`

	// LogMode selects the zap config: "dev" (default) or "prod".
	LogMode string `yaml:"log_mode"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	// Kind is a registered backend kind: "sqlite", "postgres" or "mssql".
	Kind string `yaml:"kind"`

	// DSN is backend-specific. Environment variables are expanded
	// (e.g. "postgres://app:${PGPASSWORD}@db/sales").
	DSN string `yaml:"dsn"`
}

// LoaderConfig controls ingestion behavior.
type LoaderConfig struct {
	// BatchSize bounds the number of CSV rows read, cleaned and committed
	// as one unit. Defaults to 10000.
	BatchSize int `yaml:"batch_size"`

	// Parser options are passed through to the CSV parser
	// (comma, has_header, encoding, header_map, ...).
	Parser Options `yaml:"parser"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	// Backend is "none" (default) or "datadog".
	Backend string `yaml:"backend"`
	Job     string `yaml:"job"`
	// Tags are extra backend tags, e.g. ["env:prod", "service:salesd"].
	Tags []string `yaml:"tags"`
}

// Default returns the built-in configuration: local SQLite, port 8000,
// 10k-row batches, no metrics.
func Default() Config {
	return Config{
		Listen: ":8000",
		Storage: StorageConfig{
			Kind: "sqlite",
			DSN:  "sales_data.db",
		},
		Loader: LoaderConfig{
			BatchSize: 10000,
		},
		Metrics: MetricsConfig{
			Backend: "none",
			Job:     "salesd",
		},
		LogMode: "dev",
	}
}

// Load reads a YAML config file and applies it over Default().
//
// Edge cases:
//   - path == "" returns Default() unchanged.
//   - A missing file is an error; callers decide whether that is fatal.
//   - Storage.DSN is env-expanded after decoding.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage.DSN = os.ExpandEnv(cfg.Storage.DSN)
	if cfg.Loader.BatchSize <= 0 {
		cfg.Loader.BatchSize = 10000
	}
	return cfg, nil
}
