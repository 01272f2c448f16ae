package config

import (
	"os"
	"time"
)

// Default values applied by ApplyDefaults.
const (
	DefaultModel              = "qwen2.5:14b"
	DefaultTimeout            = 120 * time.Second
	DefaultPersona            = "You are a helpful assistant."
	DefaultMaxHistory         = 25
	DefaultTemperature        = 0.7
	DefaultPlannerTemperature = 0.1
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultServiceName        = "sovereign"

	// URLEnv is consulted when endpoint.base_url is empty.
	URLEnv = "SOVEREIGN_URL"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}

	if c.Endpoint.BaseURL == "" {
		c.Endpoint.BaseURL = os.Getenv(URLEnv)
	}
	if c.Endpoint.Model == "" {
		c.Endpoint.Model = DefaultModel
	}
	if c.Endpoint.Timeout == 0 {
		c.Endpoint.Timeout = DefaultTimeout
	}

	if c.Session.Persona == "" {
		c.Session.Persona = DefaultPersona
	}
	if c.Session.MaxHistory == 0 {
		c.Session.MaxHistory = DefaultMaxHistory
	}
	if c.Session.Temperature == nil {
		t := DefaultTemperature
		c.Session.Temperature = &t
	}

	if c.Tracing.SampleRatio == nil {
		r := 1.0
		c.Tracing.SampleRatio = &r
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	if c.Planner.Temperature == nil {
		t := DefaultPlannerTemperature
		c.Planner.Temperature = &t
	}
}
