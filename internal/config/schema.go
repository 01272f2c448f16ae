// Package config handles YAML configuration loading, environment variable
// expansion, defaults and structural validation for sovereign.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Endpoint EndpointConfig `yaml:"endpoint"`
	Session  SessionConfig  `yaml:"session"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Log      LogConfig      `yaml:"log"`
	Planner  PlannerConfig  `yaml:"planner"`
}

// EndpointConfig describes the remote chat service.
type EndpointConfig struct {
	// BaseURL is the server root, typically a tunnel URL. Falls back to
	// the SOVEREIGN_URL environment variable.
	BaseURL string            `yaml:"base_url"`
	Model   string            `yaml:"model"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// SessionConfig holds conversation defaults.
type SessionConfig struct {
	Persona    string `yaml:"persona"`
	MaxHistory int    `yaml:"max_history"`
	// Temperature is a pointer so an explicit 0 survives defaulting.
	Temperature *float64 `yaml:"temperature"`
}

// StoreConfig enables the SQLite transcript store when Path is set.
type StoreConfig struct {
	Path        string `yaml:"path"`
	WAL         *bool  `yaml:"wal,omitempty"`
	BusyTimeout int    `yaml:"busy_timeout,omitempty"`
}

// MetricsConfig enables the HTTP gateway when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// TracingConfig enables OTLP/HTTP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	Insecure    bool     `yaml:"insecure"`
	SampleRatio *float64 `yaml:"sample_ratio"`
	ServiceName string   `yaml:"service_name"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// PlannerConfig drives the plan command.
type PlannerConfig struct {
	Persona     string   `yaml:"persona"`
	Temperature *float64 `yaml:"temperature"`
	// CompressSchedule is a cron expression for periodic history
	// compression. Empty disables it.
	CompressSchedule string `yaml:"compress_schedule"`
}
