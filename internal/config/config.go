// Package config holds the pipeline configuration. Numeric analysis
// parameters come from an optional YAML file; database credentials come from
// the environment so they never live in source or config files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the top-level pipeline configuration.
type Config struct {
	Threshold    ThresholdConfig    `yaml:"threshold"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Workers      int                `yaml:"workers"`
}

// ThresholdConfig drives the quantile-curve inflection detector. Column
// names the bills column holding the order duration in seconds.
type ThresholdConfig struct {
	Column       string  `yaml:"column"`
	QuantileMin  float64 `yaml:"quantile_min"`
	QuantileMax  float64 `yaml:"quantile_max"`
	QuantileStep float64 `yaml:"quantile_step"`
	WindowLength int     `yaml:"window_length"`
	PolyOrder    int     `yaml:"polyorder"`
}

// SegmentationConfig drives the multi-method peak-hour analysis. Zero is a
// valid seed: omitting the key keeps the default, an explicit "seed: 0" is
// honored as written.
type SegmentationConfig struct {
	Methods []string `yaml:"methods"`
	Seed    int64    `yaml:"seed"`
}

// Default returns the configuration used when no file is given. The
// threshold window matches the production preprocessing run; the seed keeps
// clustering reproducible across runs.
func Default() *Config {
	return &Config{
		Threshold: ThresholdConfig{
			Column:       "order_duration_seconds",
			QuantileMin:  0.935,
			QuantileMax:  0.985,
			QuantileStep: 0.001,
			WindowLength: 15,
			PolyOrder:    3,
		},
		Segmentation: SegmentationConfig{
			Methods: []string{"kmeans", "gmm", "agglo"},
			Seed:    42,
		},
		Workers: 4,
	}
}

// Load reads a YAML config file over the defaults: fields absent from the
// file keep their default value, so setting one quantile bound does not
// disturb the others and an explicit zero seed survives. An empty path
// returns the defaults directly.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Values no analysis can run with fall back individually.
	defaults := Default()
	if cfg.Threshold.Column == "" {
		cfg.Threshold.Column = defaults.Threshold.Column
	}
	if cfg.Threshold.QuantileMin <= 0 {
		cfg.Threshold.QuantileMin = defaults.Threshold.QuantileMin
	}
	if cfg.Threshold.QuantileMax <= 0 {
		cfg.Threshold.QuantileMax = defaults.Threshold.QuantileMax
	}
	if cfg.Threshold.QuantileStep <= 0 {
		cfg.Threshold.QuantileStep = defaults.Threshold.QuantileStep
	}
	if cfg.Threshold.WindowLength <= 0 {
		cfg.Threshold.WindowLength = defaults.Threshold.WindowLength
	}
	if cfg.Threshold.PolyOrder <= 0 {
		cfg.Threshold.PolyOrder = defaults.Threshold.PolyOrder
	}
	if len(cfg.Segmentation.Methods) == 0 {
		cfg.Segmentation.Methods = defaults.Segmentation.Methods
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	return cfg, nil
}

// Postgres holds export database credentials, read from VENUEPULSE_PG_*
// environment variables.
type Postgres struct {
	Host     string `envconfig:"PG_HOST" default:"localhost"`
	Port     int    `envconfig:"PG_PORT" default:"5432"`
	Database string `envconfig:"PG_DATABASE" default:"shiftsync"`
	User     string `envconfig:"PG_USER" default:"postgres"`
	Password string `envconfig:"PG_PASSWORD"`
	SSLMode  string `envconfig:"PG_SSLMODE" default:"disable"`
}

// LoadPostgres reads credentials from the environment, loading a local .env
// file first when present.
func LoadPostgres() (Postgres, error) {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	var pg Postgres
	if err := envconfig.Process("venuepulse", &pg); err != nil {
		return Postgres{}, fmt.Errorf("failed to read postgres settings: %w", err)
	}
	return pg, nil
}

// DSN renders a lib/pq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		p.Host, p.Port, p.Database, p.User, p.Password, p.SSLMode)
}
