package session

import (
	"log/slog"

	"github.com/flemzord/sovereign/internal/memory"
	"github.com/flemzord/sovereign/internal/metrics"
	"github.com/flemzord/sovereign/internal/provider"
	"go.opentelemetry.io/otel/trace"
)

// Option customises a Session at construction.
type Option func(*options)

type options struct {
	provider       provider.Provider
	logger         *slog.Logger
	metrics        *metrics.Metrics
	transcript     memory.HistoryStore
	tracerProvider trace.TracerProvider
	id             string
}

// WithProvider makes the session talk to p instead of building an Ollama
// transport from the config's endpoint fields.
func WithProvider(p provider.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records history size, evictions and operation results.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTranscript mirrors every history mutation into store. Store
// failures are logged and never fail the session operation.
func WithTranscript(store memory.HistoryStore) Option {
	return func(o *options) { o.transcript = store }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// ChatOption customises a single Chat call.
type ChatOption func(*chatOptions)

type chatOptions struct {
	temperature float64
}

// WithTemperature overrides the configured temperature for one call. The
// value is forwarded unclamped.
func WithTemperature(t float64) ChatOption {
	return func(o *chatOptions) { o.temperature = t }
}
