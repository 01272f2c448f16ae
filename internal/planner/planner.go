// Package planner turns a conversation session into a high-level command
// planner: each status line is sent as "Current State: <line>" at a low
// temperature and the reply is validated as a JSON command before it is
// published.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/flemzord/sovereign/internal/session"
)

// DefaultTemperature keeps command output predictable.
const DefaultTemperature = 0.1

// StatePrefix is prepended to every status line.
const StatePrefix = "Current State: "

// DefaultPersona instructs the model to act as the planner.
const DefaultPersona = `You are the High-Level Planner for a robot.
INPUT: A JSON string describing sensor data and robot state.
OUTPUT: A strictly formatted JSON object with the next high-level command.
SCHEMA: { "action": "string", "parameters": [list], "reasoning": "string" }
Do not use Markdown. Do not include preamble.`

// Session is the part of *session.Session the planner drives.
type Session interface {
	Chat(ctx context.Context, text string, opts ...session.ChatOption) (string, error)
	Compress(ctx context.Context) (string, error)
}

// Compile-time check.
var _ Session = (*session.Session)(nil)

// Planner sends status updates and parses the replies into commands.
type Planner struct {
	session     Session
	temperature float64
	logger      *slog.Logger
}

// Option customises a Planner.
type Option func(*Planner)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float64) Option {
	return func(p *Planner) { p.temperature = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// New returns a planner over s. The caller sets s's persona (usually
// DefaultPersona) before planning.
func New(s Session, opts ...Option) *Planner {
	p := &Planner{
		session:     s,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// ReplyError reports a reply that did not parse as a command. Reply holds
// the raw model output.
type ReplyError struct {
	Reply string
	Err   error
}

// Error implements error.
func (e *ReplyError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the parse failure.
func (e *ReplyError) Unwrap() error {
	return e.Err
}

// Plan sends status and returns the parsed command. Exchange failures are
// returned as the session's *session.ChatError; unparseable replies as a
// *ReplyError wrapping ErrInvalidCommand.
func (p *Planner) Plan(ctx context.Context, status string) (Command, error) {
	reply, err := p.session.Chat(ctx, StatePrefix+status, session.WithTemperature(p.temperature))
	if err != nil {
		return Command{}, err
	}

	cmd, err := Parse(reply)
	if err != nil {
		return Command{}, &ReplyError{Reply: reply, Err: err}
	}
	return cmd, nil
}

// Compress compresses the underlying session history.
func (p *Planner) Compress(ctx context.Context) error {
	summary, err := p.session.Compress(ctx)
	if err != nil {
		return fmt.Errorf("planner: compress: %w", err)
	}
	p.logger.Info("planner history compressed", "summary_len", len(summary))
	return nil
}

// isFatal reports whether err should stop the loop rather than skip a line.
func isFatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
