// Package config loads runtime settings for a drop pipeline host process:
// worker defaults, retry defaults, and the observability backends wired
// through drop.WithMetrics / drop.WithTracer / drop.WithLogger. Settings
// come from an optional YAML file overlaid with environment variables, the
// same two-tier shape the rest of the ambient stack uses.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/ugn-go/drop/internal/helpers"
)

// WorkerDefaults seeds WorkerOption values a caller didn't override
// explicitly when constructing a worker from config.
type WorkerDefaults struct {
	Concurrency int           `yaml:"concurrency"`
	MaxTries    uint32        `yaml:"max_tries"`
	RetryWait   time.Duration `yaml:"retry_wait"`
}

// ObservabilityConfig selects which ambient backends a host process wires
// into the pipeline and its workers.
type ObservabilityConfig struct {
	MetricsAddr    string `yaml:"metrics_addr"`
	TracingEnabled bool   `yaml:"tracing_enabled"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	LogLevel       string `yaml:"log_level"`
}

// Config is the top-level shape loaded from a pipeline host's YAML
// configuration file.
type Config struct {
	Worker        WorkerDefaults      `yaml:"worker"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Default returns the built-in fallback configuration: single-attempt
// workers at concurrency 1, no retry wait, metrics off, info logging.
func Default() *Config {
	return &Config{
		Worker: WorkerDefaults{
			Concurrency: 1,
			MaxTries:    1,
			RetryWait:   0,
		},
		Observability: ObservabilityConfig{
			MetricsAddr:    "",
			TracingEnabled: false,
			LogLevel:       "info",
		},
	}
}

// Load reads .env into the process environment (if present; a missing
// file is not an error), then reads path as YAML into a copy of
// Default(), then overlays DROP_* environment variables on top. Pass an
// empty path to skip the YAML file and use only defaults plus env.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Worker.Concurrency = helpers.GetIntFromEnv("DROP_WORKER_CONCURRENCY", cfg.Worker.Concurrency)
	cfg.Worker.MaxTries = uint32(helpers.GetIntFromEnv("DROP_WORKER_MAX_TRIES", int(cfg.Worker.MaxTries)))
	cfg.Worker.RetryWait = helpers.GetDurationFromEnv("DROP_WORKER_RETRY_WAIT", cfg.Worker.RetryWait)

	cfg.Observability.MetricsAddr = helpers.GetStringFromEnv("DROP_METRICS_ADDR", cfg.Observability.MetricsAddr)
	cfg.Observability.TracingEnabled = helpers.GetBoolFromEnv("DROP_TRACING_ENABLED", cfg.Observability.TracingEnabled)
	cfg.Observability.OTLPEndpoint = helpers.GetStringFromEnv("DROP_OTLP_ENDPOINT", cfg.Observability.OTLPEndpoint)
	cfg.Observability.LogLevel = helpers.GetStringFromEnv("DROP_LOG_LEVEL", cfg.Observability.LogLevel)
}
