package ollama

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults applied by Config.defaults.
const (
	DefaultModel   = "qwen2.5:14b"
	DefaultTimeout = 120 * time.Second
)

// Config holds the configuration for an Ollama chat endpoint.
type Config struct {
	// BaseURL is the server root, with or without a trailing slash
	// (e.g. the tunnel URL). The chat path is appended to it.
	BaseURL string            `yaml:"base_url"`
	Model   string            `yaml:"model"`
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// defaults sets default values for unset fields.
func (c *Config) defaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// validate returns an error if required fields are missing or invalid.
func (c *Config) validate() error {
	if c.BaseURL == "" {
		return errMissingField("base_url")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("provider.ollama: base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider.ollama: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("provider.ollama: base_url has no host")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("provider.ollama: timeout must not be negative")
	}
	return nil
}

// errMissingField returns a validation error for a missing required field.
func errMissingField(field string) error {
	return fmt.Errorf("provider.ollama: %s is required", field)
}
