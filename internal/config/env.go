package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix is prepended to every environment variable, e.g.
// FOCUSTIME_TRACKER_POLL_INTERVAL or FOCUSTIME_LOG_LEVEL.
const EnvPrefix = "FOCUSTIME"

// LoadFromEnv overlays environment variables onto cfg.
// Variables that are not set leave the existing value untouched.
func LoadFromEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return errors.Wrap(err, "failed to load config from environment")
	}
	return nil
}

// New creates a new Config with default values and loads from environment
func New() (*Config, error) {
	cfg := Default()
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Usage lists the environment variables understood by LoadFromEnv
func Usage() string {
	return `Environment Variables:
  FOCUSTIME_TRACKER_POLL_INTERVAL   How often to probe the focused window (default 100ms)
  FOCUSTIME_REPORT_INTERVAL         How often to print the status block (default 1s)
  FOCUSTIME_REPORT_FORMAT           Status block format: text, json, yaml (default text)
  FOCUSTIME_LOG_LEVEL               debug, info, warn, error (default info)
  FOCUSTIME_LOG_DEV                 Human-readable console logs (true/false)
  FOCUSTIME_DAEMON_PID_FILE         PID file path
  FOCUSTIME_PROBE_BACKEND           Active window backend (default auto)`
}
