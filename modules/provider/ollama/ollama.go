// Package ollama implements provider.Provider against an Ollama-style
// /api/chat endpoint, usually reached through a tunnel. Each call is one
// non-streaming exchange with a bounded wait; failures come back as
// *provider.TransportError and are never retried here.
package ollama

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/flemzord/sovereign/internal/metrics"
	"github.com/flemzord/sovereign/internal/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/flemzord/sovereign/modules/provider/ollama"

// Provider is an Ollama chat provider. It holds no per-call state; one
// Provider may serve any number of sessions concurrently.
type Provider struct {
	config  Config
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option customises a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records every exchange into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Provider) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is overwritten
// with the configured bound.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// New validates cfg and returns a ready Provider.
func New(cfg Config, opts ...Option) (*Provider, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: cfg,
		client: &http.Client{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client.Timeout = cfg.Timeout
	return p, nil
}

// Complete implements provider.Provider.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	ctx, span := p.tracer.Start(ctx, "ollama.chat",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.system", "ollama"),
			attribute.String("gen_ai.request.model", p.config.Model),
			attribute.Int("sovereign.request.messages", len(req.Messages)),
			attribute.String("server.address", p.host()),
		),
	)
	defer span.End()

	if req.Temperature != nil {
		span.SetAttributes(attribute.Float64("gen_ai.request.temperature", *req.Temperature))
	}

	start := time.Now()
	resp, status, err := p.complete(ctx, req)
	elapsed := time.Since(start)

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	if err != nil {
		kind := provider.KindOf(err)
		p.metrics.ObserveRequest(kind.String(), elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		p.logger.Warn("ollama: chat exchange failed",
			"kind", kind.String(),
			"status", status,
			"elapsed", elapsed,
			"error", err,
		)
		return provider.CompletionResponse{}, err
	}

	p.metrics.ObserveRequest(metrics.OutcomeOK, elapsed)
	span.SetAttributes(
		attribute.Int("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
	)
	p.logger.Debug("ollama: chat exchange completed",
		"messages", len(req.Messages),
		"elapsed", elapsed,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp, nil
}

func (p *Provider) complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, int, error) {
	body, status, err := p.doChat(ctx, buildRequest(p.config.Model, req))
	if err != nil {
		return provider.CompletionResponse{}, status, err
	}
	resp, err := parseResponse(body)
	return resp, status, err
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string {
	return p.config.Model
}

// BaseURL returns the normalised endpoint root.
func (p *Provider) BaseURL() string {
	return p.config.BaseURL
}

// HealthCheck implements provider.HealthChecker.
// It probes the /api/tags endpoint to check server availability.
func (p *Provider) HealthCheck(ctx context.Context) error {
	req, err := p.newRequest(ctx, http.MethodGet, tagsPath, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", classifyNetError(err))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check: %w", handleErrorResponse(resp))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize)) // drain body
	return nil
}

func (p *Provider) host() string {
	u, err := url.Parse(p.config.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Compile-time interface assertions.
var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)
