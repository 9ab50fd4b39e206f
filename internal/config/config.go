package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
)

// Report formats understood by the reporter
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all application configuration
type Config struct {
	// Tracker configuration
	Tracker TrackerConfig

	// Report configuration
	Report ReportConfig

	// Logging configuration
	Log LogConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Probe configuration
	Probe ProbeConfig
}

// TrackerConfig holds polling behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration `split_words:"true"` // How often to probe the focused window
	MinPollInterval time.Duration `ignored:"true"`     // Minimum allowed poll interval
	MaxPollInterval time.Duration `ignored:"true"`     // Maximum allowed poll interval
}

// ReportConfig holds status block rendering configuration
type ReportConfig struct {
	Interval time.Duration // How often to print the status block
	Format   string        // text, json or yaml
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string // debug, info, warn, error
	Dev   bool   // console encoding instead of JSON
}

// DaemonConfig holds single-instance guard configuration
type DaemonConfig struct {
	PIDFile string `split_words:"true"` // Path to PID file
}

// ProbeConfig selects the active-window backend
type ProbeConfig struct {
	Backend string // auto, or a platform backend name
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			PollInterval:    100 * time.Millisecond,
			MinPollInterval: 10 * time.Millisecond,
			MaxPollInterval: 10 * time.Second,
		},
		Report: ReportConfig{
			Interval: time.Second,
			Format:   FormatText,
		},
		Log: LogConfig{
			Level: "info",
			Dev:   false,
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(os.TempDir(), fmt.Sprintf("focustime-%d.pid", os.Getuid())),
		},
		Probe: ProbeConfig{
			Backend: "auto",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Report.Interval < c.Tracker.PollInterval {
		return fmt.Errorf("report interval (%v) cannot be less than poll interval (%v)",
			c.Report.Interval, c.Tracker.PollInterval)
	}

	switch c.Report.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid report format: %s (valid: text, json, yaml)", c.Report.Format)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Probe.Backend == "" {
		return fmt.Errorf("probe backend cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Tracker:
    Poll Interval: %v
    Min Interval: %v
    Max Interval: %v
  Report:
    Interval: %v
    Format: %s
  Log:
    Level: %s
    Dev: %v
  Daemon:
    PID File: %s
  Probe:
    Backend: %s`,
		c.Tracker.PollInterval,
		c.Tracker.MinPollInterval,
		c.Tracker.MaxPollInterval,
		c.Report.Interval,
		c.Report.Format,
		c.Log.Level,
		c.Log.Dev,
		c.Daemon.PIDFile,
		c.Probe.Backend,
	)
}
