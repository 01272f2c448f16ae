package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config after defaults
// have been applied. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, validateEndpoint(cfg.Endpoint)...)

	if cfg.Session.MaxHistory < 1 {
		errs = append(errs, fmt.Errorf("config: session.max_history must be at least 1, got %d", cfg.Session.MaxHistory))
	}

	if t := cfg.Session.Temperature; t != nil && !finite(*t) {
		errs = append(errs, fmt.Errorf("config: session.temperature must be a finite number, got %v", *t))
	}
	if t := cfg.Planner.Temperature; t != nil && !finite(*t) {
		errs = append(errs, fmt.Errorf("config: planner.temperature must be a finite number, got %v", *t))
	}

	if cfg.Store.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: store.busy_timeout must be non-negative, got %d", cfg.Store.BusyTimeout))
	}

	if cfg.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			errs = append(errs, fmt.Errorf("config: metrics.addr: %w", err))
		}
	}

	if r := cfg.Tracing.SampleRatio; r != nil && (*r < 0 || *r > 1) {
		errs = append(errs, fmt.Errorf("config: tracing.sample_ratio must be within [0, 1], got %v", *r))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q is not one of text, json", cfg.Log.Format))
	}

	if s := cfg.Planner.CompressSchedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			errs = append(errs, fmt.Errorf("config: planner.compress_schedule: %w", err))
		}
	}

	return errors.Join(errs...)
}

func validateEndpoint(ep EndpointConfig) []error {
	var errs []error

	if ep.BaseURL == "" {
		errs = append(errs, fmt.Errorf("config: endpoint.base_url is required (or set %s)", URLEnv))
	} else if u, err := url.Parse(ep.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("config: endpoint.base_url: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: endpoint.base_url %q must be an http(s) URL with a host", ep.BaseURL))
	}

	if ep.Timeout < 0 {
		errs = append(errs, errors.New("config: endpoint.timeout must not be negative"))
	}

	for name := range ep.Headers {
		if name == "" {
			errs = append(errs, errors.New("config: endpoint.headers has an empty header name"))
		}
	}

	return errs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
