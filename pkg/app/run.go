// Package app builds the runtime shared by the sovereign commands:
// configuration, logger, metrics, tracing, transport, transcript store and
// the optional gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flemzord/sovereign/internal/config"
	"github.com/flemzord/sovereign/internal/gateway"
	"github.com/flemzord/sovereign/internal/metrics"
	"github.com/flemzord/sovereign/internal/security"
	"github.com/flemzord/sovereign/internal/session"
	"github.com/flemzord/sovereign/internal/telemetry"
	"github.com/flemzord/sovereign/modules/memory/sqlite"
	"github.com/flemzord/sovereign/modules/provider/ollama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"
)

// RunParams configures Build.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, the standard search path is used and defaults apply when
	// nothing is found.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// Stderr receives log output. Defaults to os.Stderr.
	Stderr io.Writer
}

// Runtime holds everything a command needs to drive a session.
type Runtime struct {
	Config     *config.Config
	ConfigPath string

	Logger   *slog.Logger
	Redactor *security.Redactor

	Registry       *prometheus.Registry
	Metrics        *metrics.Metrics
	TracerProvider trace.TracerProvider

	Provider *ollama.Provider
	// Store is nil unless store.path is configured.
	Store *sqlite.Store

	gateway  *gateway.Gateway
	shutdown telemetry.ShutdownFunc
}

// Build loads and validates the configuration and constructs the runtime.
// Close must be called when Build succeeds.
func Build(ctx context.Context, params RunParams) (*Runtime, error) {
	cfg, path, err := config.LoadOrDefault(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	stderr := params.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	redactor := NewRedactor(cfg)
	logger, err := security.NewLogger(stderr, cfg.Log.Level, cfg.Log.Format, redactor)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	tp, shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    *cfg.Tracing.SampleRatio,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: params.Version,
	})
	if err != nil {
		return nil, err
	}

	p, err := ollama.New(ollama.Config{
		BaseURL: cfg.Endpoint.BaseURL,
		Model:   cfg.Endpoint.Model,
		Headers: cfg.Endpoint.Headers,
		Timeout: cfg.Endpoint.Timeout,
	},
		ollama.WithLogger(logger),
		ollama.WithMetrics(m),
		ollama.WithTracerProvider(tp),
	)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	rt := &Runtime{
		Config:         cfg,
		ConfigPath:     path,
		Logger:         logger,
		Redactor:       redactor,
		Registry:       registry,
		Metrics:        m,
		TracerProvider: tp,
		Provider:       p,
		shutdown:       shutdown,
	}

	if cfg.Store.Path != "" {
		store, err := sqlite.Open(sqlite.Config{
			Path:        cfg.Store.Path,
			WAL:         cfg.Store.WAL,
			BusyTimeout: cfg.Store.BusyTimeout,
		})
		if err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
		rt.Store = store
	}

	if path != "" {
		logger.Debug("configuration loaded", "path", path)
	} else {
		logger.Debug("no configuration file found, using defaults")
	}
	return rt, nil
}

// NewRedactor returns a redactor that also masks the configured header
// values, which usually carry tunnel or proxy credentials.
func NewRedactor(cfg *config.Config) *security.Redactor {
	r := security.NewRedactor()
	for _, v := range cfg.Endpoint.Headers {
		r.AddLiteral(v)
	}
	return r
}

// SessionConfig maps the configuration onto session settings.
func (r *Runtime) SessionConfig() session.Config {
	return session.Config{
		Model:       r.Config.Endpoint.Model,
		MaxHistory:  r.Config.Session.MaxHistory,
		Temperature: *r.Config.Session.Temperature,
		BaseURL:     r.Config.Endpoint.BaseURL,
		Timeout:     r.Config.Endpoint.Timeout,
	}
}

func (r *Runtime) sessionOptions() []session.Option {
	opts := []session.Option{
		session.WithProvider(r.Provider),
		session.WithLogger(r.Logger),
		session.WithMetrics(r.Metrics),
		session.WithTracerProvider(r.TracerProvider),
	}
	if r.Store != nil {
		opts = append(opts, session.WithTranscript(r.Store))
	}
	return opts
}

// NewSession starts a session with persona over the shared transport.
// An empty persona uses session.persona from the configuration.
func (r *Runtime) NewSession(persona string) (*session.Session, error) {
	if persona == "" {
		persona = r.Config.Session.Persona
	}
	return session.New(r.SessionConfig(), persona, r.sessionOptions()...)
}

// ResumeSession rebuilds a stored session. It fails when no store is
// configured.
func (r *Runtime) ResumeSession(id string) (*session.Session, error) {
	if r.Store == nil {
		return nil, errors.New("app: resume requires store.path to be configured")
	}
	return session.Resume(r.SessionConfig(), id, r.Store, r.sessionOptions()...)
}

// StartGateway serves /health and /metrics on metrics.addr. It does
// nothing when no address is configured.
func (r *Runtime) StartGateway(ctx context.Context) error {
	if r.Config.Metrics.Addr == "" {
		return nil
	}
	g := gateway.New(gateway.Config{Bind: r.Config.Metrics.Addr},
		gateway.WithLogger(r.Logger),
		gateway.WithHealthChecker(r.Provider, r.Provider.ModelName()),
		gateway.WithGatherer(r.Registry),
	)
	if err := g.Start(ctx); err != nil {
		return fmt.Errorf("app: start gateway: %w", err)
	}
	r.gateway = g
	return nil
}

// Gateway returns the running gateway, or nil.
func (r *Runtime) Gateway() *gateway.Gateway {
	return r.gateway
}

// Close stops the gateway, flushes spans and closes the store.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.gateway != nil {
		if err := r.gateway.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		r.gateway = nil
	}
	if r.shutdown != nil {
		if err := r.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app: flush traces: %w", err))
		}
		r.shutdown = nil
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		r.Store = nil
	}
	return errors.Join(errs...)
}
