// Package session manages a single conversation with a remote chat model:
// its persona, its bounded history, and the undo and compression
// operations that reshape that history.
//
// A Session is not safe for concurrent use. Callers that need parallel
// conversations create one Session each; sessions share nothing but an
// optional stateless provider.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	ctxengine "github.com/flemzord/sovereign/internal/context"
	"github.com/flemzord/sovereign/internal/memory"
	"github.com/flemzord/sovereign/internal/metrics"
	"github.com/flemzord/sovereign/internal/provider"
	"github.com/flemzord/sovereign/modules/provider/ollama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/flemzord/sovereign/internal/session"

// Defaults used by DefaultConfig and for zero-valued Config fields.
const (
	DefaultMaxHistory  = ctxengine.DefaultMaxPairs
	DefaultTemperature = 0.7
	DefaultPersona     = "You are a helpful assistant."
)

// Config holds the per-session settings. It is copied at construction
// and never changes afterwards.
type Config struct {
	// Model is the model identifier sent with every request.
	Model string
	// MaxHistory is the number of user/assistant pairs retained.
	MaxHistory int
	// Temperature is the default sampling temperature for Chat.
	Temperature float64
	// BaseURL is the chat endpoint root.
	BaseURL string
	// Timeout bounds each exchange.
	Timeout time.Duration
}

// DefaultConfig returns a Config with every field but BaseURL set.
func DefaultConfig() Config {
	return Config{
		Model:       ollama.DefaultModel,
		MaxHistory:  DefaultMaxHistory,
		Temperature: DefaultTemperature,
		Timeout:     ollama.DefaultTimeout,
	}
}

// defaults fills zero-valued fields. Temperature is left alone: zero is a
// legitimate setting.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = ollama.DefaultModel
	}
	if c.MaxHistory == 0 {
		c.MaxHistory = DefaultMaxHistory
	}
	if c.Timeout == 0 {
		c.Timeout = ollama.DefaultTimeout
	}
}

func (c *Config) validate() error {
	if c.MaxHistory < 1 {
		return fmt.Errorf("session: max_history must be at least 1, got %d", c.MaxHistory)
	}
	if !finite(c.Temperature) {
		return fmt.Errorf("%w, got %v", ErrInvalidTemperature, c.Temperature)
	}
	return nil
}

// Session is one conversation. history[0] is always the system turn
// carrying the persona.
type Session struct {
	id        string
	config    Config
	provider  provider.Provider
	window    ctxengine.Window
	compactor *ctxengine.Compactor
	history   []provider.LLMMessage

	transcript memory.HistoryStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// New creates a Session whose history is the single system turn persona.
// Unless WithProvider is given, an Ollama transport is built from cfg's
// BaseURL, Model and Timeout; New fails only if that configuration is
// invalid.
func New(cfg Config, persona string, opts ...Option) (*Session, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.id == "" {
		o.id = uuid.Must(uuid.NewV7()).String()
	}

	p := o.provider
	if p == nil {
		op, err := ollama.New(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		},
			ollama.WithLogger(o.logger),
			ollama.WithMetrics(o.metrics),
			ollama.WithTracerProvider(o.tracerProvider),
		)
		if err != nil {
			return nil, fmt.Errorf("session: build transport: %w", err)
		}
		p = op
	}

	temperature := cfg.Temperature
	s := &Session{
		id:       o.id,
		config:   cfg,
		provider: p,
		window:   ctxengine.NewWindow(cfg.MaxHistory),
		compactor: ctxengine.NewCompactor(ctxengine.ProviderSummarizer{
			Provider:    p,
			Temperature: &temperature,
		}),
		transcript: o.transcript,
		logger:     o.logger.With("session", o.id),
		metrics:    o.metrics,
		tracer:     o.tracerProvider.Tracer(tracerName),
	}
	s.reset(persona)
	s.persist()
	return s, nil
}

// Resume rebuilds the session id from its transcript in store. The
// stored history must start with a system turn and contain only known
// roles. The window is applied immediately, so resuming with a smaller
// MaxHistory trims the oldest pairs.
func Resume(cfg Config, id string, store memory.HistoryStore, opts ...Option) (*Session, error) {
	msgs, err := store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("session: resume %s: %w", id, err)
	}
	if len(msgs) == 0 || msgs[0].Role != provider.MessageRoleSystem {
		return nil, fmt.Errorf("%w: %s does not start with a system turn", ErrInvalidTranscript, id)
	}
	for i, m := range msgs {
		if !m.Role.Valid() || (i > 0 && m.Role == provider.MessageRoleSystem) {
			return nil, fmt.Errorf("%w: %s: turn %d has role %q", ErrInvalidTranscript, id, i, m.Role)
		}
	}

	opts = append(opts, WithTranscript(store), func(o *options) { o.id = id })
	s, err := New(cfg, msgs[0].Content, opts...)
	if err != nil {
		return nil, err
	}

	s.history = slices.Clone(msgs)
	s.enforceWindow()
	s.persist()
	s.logger.Info("session resumed", "turns", len(s.history))
	return s, nil
}

// ID returns the session identifier (a UUIDv7 unless resumed).
func (s *Session) ID() string {
	return s.id
}

// Config returns the settings the session was built with.
func (s *Session) Config() Config {
	return s.config
}

// Persona returns the content of the system turn.
func (s *Session) Persona() string {
	return s.history[0].Content
}

// History returns a copy of the current history, system turn first.
func (s *Session) History() []provider.LLMMessage {
	return slices.Clone(s.history)
}

// Len returns the number of turns in the history, system turn included.
func (s *Session) Len() int {
	return len(s.history)
}

// Provider returns the transport the session talks to.
func (s *Session) Provider() provider.Provider {
	return s.provider
}

// reset replaces the history with the single system turn persona.
func (s *Session) reset(persona string) {
	s.history = []provider.LLMMessage{
		provider.NewMessage(provider.MessageRoleSystem, persona),
	}
}

// appendTurn adds a turn and applies the sliding window.
func (s *Session) appendTurn(role provider.MessageRole, content string) {
	s.history = append(s.history, provider.NewMessage(role, content))
	s.enforceWindow()
}

func (s *Session) enforceWindow() {
	var evicted int
	s.history, evicted = s.window.Enforce(s.history)
	if evicted > 0 {
		s.metrics.AddEvictions(evicted)
		s.logger.Debug("history window evicted turns",
			"evicted", evicted,
			"limit", s.window.Limit(),
		)
	}
}

// persist publishes the history length and mirrors the history into the
// transcript store, if any.
func (s *Session) persist() {
	s.metrics.SetHistoryLen(len(s.history))
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Save(s.id, s.history); err != nil {
		s.logger.Warn("transcript save failed", "error", err)
	}
}
