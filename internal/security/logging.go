package security

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the process logger: a text or JSON handler on w at the
// given level, wrapped in a RedactingHandler backed by redactor.
func NewLogger(w io.Writer, level, format string, redactor *Redactor) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("security: log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var inner slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		inner = slog.NewTextHandler(w, opts)
	case "json":
		inner = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("security: unknown log format %q", format)
	}

	return slog.New(NewRedactingHandler(inner, redactor)), nil
}
