package study

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/flemzord/sovereign/internal/provider"
	"github.com/flemzord/sovereign/internal/session"
)

// ConnectionCheck is sent once at start-up to confirm the model answers.
const ConnectionCheck = "Are you online? Reply with 'Ready'."

// Conversation is the part of *session.Session the REPL drives.
type Conversation interface {
	Chat(ctx context.Context, text string, opts ...session.ChatOption) (string, error)
	Compress(ctx context.Context) (string, error)
	Undo() error
	Clear()
	SetPersona(persona string)
	History() []provider.LLMMessage
}

// Compile-time check.
var _ Conversation = (*session.Session)(nil)

// REPL reads user lines and prints assistant replies.
type REPL struct {
	conv   Conversation
	mode   Mode
	topic  string
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewREPL returns a REPL for conv in mode on topic. The persona is applied
// by Start.
func NewREPL(conv Conversation, mode Mode, topic string, in io.Reader, out io.Writer, logger *slog.Logger) *REPL {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &REPL{
		conv:   conv,
		mode:   mode,
		topic:  topic,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// CheckConnection sends ConnectionCheck and reports whether the model
// replied. A failure is returned as the session's *session.ChatError.
func CheckConnection(ctx context.Context, conv Conversation) (string, error) {
	return conv.Chat(ctx, ConnectionCheck)
}

// Start applies the mode's persona and prints the banner, then the
// opening line or the reply to the mode's first prompt.
func (r *REPL) Start(ctx context.Context) {
	r.conv.SetPersona(r.mode.Persona(r.topic))
	r.printf("\n%s\n", r.mode.Banner(r.topic))

	if opening := r.mode.Opening(r.topic); opening != "" {
		r.printf("AI: %s\n", opening)
	}
	if prompt := r.mode.FirstPrompt(r.topic); prompt != "" {
		r.printf("AI: I am generating your first question on %s...\n", r.topic)
		r.exchange(ctx, prompt)
	}
}

// Run reads lines until /quit, /exit, end of input or ctx cancellation.
// Start is called first when resume is false.
func (r *REPL) Run(ctx context.Context, resume bool) error {
	if !resume {
		r.Start(ctx)
	}

	sc := bufio.NewScanner(r.in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		r.printf("\nYou: ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("study: read input: %w", err)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if quit := r.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle runs one input line and reports whether the REPL should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	switch strings.ToLower(cmd) {
	case "/quit", "/exit":
		return true
	case "/undo":
		if err := r.conv.Undo(); err != nil {
			if errors.Is(err, session.ErrNothingToUndo) {
				r.printf("Nothing to undo.\n")
				return false
			}
			r.printf("Undo failed: %v\n", err)
			return false
		}
		r.printf("Last exchange removed.\n")
	case "/compress":
		r.printf("Compressing memory...\n")
		summary, err := r.conv.Compress(ctx)
		if err != nil {
			r.printf("Compression failed, history unchanged. %s\n", Describe(err))
			return false
		}
		r.printf("Memory compressed (%d characters of summary).\n", len(summary))
	case "/wipe":
		r.conv.Clear()
		r.printf("Memory cleared.\n")
	case "/persona":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			r.printf("Usage: /persona <text>\n")
			return false
		}
		r.conv.SetPersona(arg)
		r.printf("Persona changed, history reset.\n")
	case "/history":
		for i, m := range r.conv.History() {
			r.printf("%3d %-9s %s\n", i, m.Role, oneLine(m.Content, 100))
		}
	default:
		r.exchange(ctx, line)
	}
	return false
}

func (r *REPL) exchange(ctx context.Context, text string) {
	reply, err := r.conv.Chat(ctx, text, session.WithTemperature(r.mode.Temperature()))
	if err != nil {
		r.logger.Warn("exchange failed", "error", err)
		r.printf("Error: %s\n", Describe(err))
		return
	}
	r.printf("AI: %s\n", reply)
}

func (r *REPL) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Describe turns an exchange failure into a message for the user.
func Describe(err error) string {
	var te *provider.TransportError
	switch {
	case errors.Is(err, session.ErrInvalidTemperature):
		return "The temperature must be a finite number."
	case errors.Is(err, provider.ErrUnreachable):
		return "Cannot connect to the model server. Is it running and is the URL correct?"
	case errors.Is(err, provider.ErrTimeout):
		return "The model did not answer in time."
	case errors.As(err, &te) && te.Kind == provider.KindServerError:
		return fmt.Sprintf("The model server answered with HTTP %d.", te.Status)
	case errors.Is(err, provider.ErrMalformedResponse):
		return "The model server sent a reply that could not be read."
	default:
		return err.Error()
	}
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-3]) + "..."
	}
	return s
}
