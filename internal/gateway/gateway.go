// Package gateway serves the operational HTTP surface of a running
// sovereign process: an upstream health probe and the Prometheus scrape
// endpoint. It never touches a session.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/sovereign/internal/provider"
	"github.com/prometheus/client_golang/prometheus"
)

// Gateway is the HTTP server exposing /health and /metrics.
type Gateway struct {
	config    Config
	logger    *slog.Logger
	health    provider.HealthChecker
	model     string
	gatherer  prometheus.Gatherer
	server    *http.Server
	addr      net.Addr
	startedAt time.Time
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithHealthChecker makes /health probe hc. The model name is reported
// alongside the probe result.
func WithHealthChecker(hc provider.HealthChecker, model string) Option {
	return func(g *Gateway) {
		g.health = hc
		g.model = model
	}
}

// WithGatherer sets the registry served on /metrics. Defaults to
// prometheus.DefaultGatherer.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(g *Gateway) { g.gatherer = gatherer }
}

// New creates a gateway. It does not listen until Start.
func New(cfg Config, opts ...Option) *Gateway {
	cfg.defaults()
	g := &Gateway{
		config:   cfg,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Handler returns the routed handler without starting a server.
func (g *Gateway) Handler() http.Handler {
	return g.buildRouter()
}

// Start binds the listen address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}
	g.addr = ln.Addr()

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr.String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded.
func (g *Gateway) Addr() net.Addr {
	return g.addr
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
