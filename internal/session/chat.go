package session

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/flemzord/sovereign/internal/provider"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opChat     = "chat"
	opCompress = "compress"
	opUndo     = "undo"
	opPersona  = "set_persona"
	opClear    = "clear"
)

// Chat sends text as a user turn and returns the model's reply.
//
// The user turn is committed before the exchange and stays in the history
// even if the exchange fails; in that case no assistant turn is added and
// a *ChatError is returned. There is no retry. The sliding window is
// applied after each appended turn, so the history never exceeds
// 2*MaxHistory+1 turns.
func (s *Session) Chat(ctx context.Context, text string, opts ...ChatOption) (string, error) {
	co := chatOptions{temperature: s.config.Temperature}
	for _, opt := range opts {
		opt(&co)
	}
	if !finite(co.temperature) {
		err := fmt.Errorf("%w, got %v", ErrInvalidTemperature, co.temperature)
		s.metrics.RecordOperation(opChat, err)
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "session.chat", trace.WithAttributes(
		attribute.String("sovereign.session.id", s.id),
		attribute.Float64("gen_ai.request.temperature", co.temperature),
	))
	defer span.End()

	s.appendTurn(provider.MessageRoleUser, text)

	resp, err := s.provider.Complete(ctx, provider.CompletionRequest{
		Messages:    slices.Clone(s.history),
		Temperature: &co.temperature,
	})
	if err != nil {
		err = &ChatError{Op: opChat, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat failed")
		s.metrics.RecordOperation(opChat, err)
		s.logger.Warn("chat failed, user turn kept", "error", err, "turns", len(s.history))
		s.persist()
		return "", err
	}

	s.appendTurn(provider.MessageRoleAssistant, resp.Content)
	s.metrics.RecordOperation(opChat, nil)
	span.SetAttributes(attribute.Int("sovereign.session.turns", len(s.history)))
	s.logger.Debug("chat completed", "turns", len(s.history))
	s.persist()
	return resp.Content, nil
}

// Compress asks the model to summarize the conversation and replaces the
// history with [system(persona), assistant("MEMORY CONTEXT: "+summary)].
// The summarization exchange itself is never added to the history. On
// failure the history is left untouched and a *ChatError is returned.
func (s *Session) Compress(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.compress", trace.WithAttributes(
		attribute.String("sovereign.session.id", s.id),
		attribute.Int("sovereign.session.turns", len(s.history)),
	))
	defer span.End()

	before := len(s.history)
	summary, compacted, err := s.compactor.Compact(ctx, s.Persona(), s.history)
	if err != nil {
		err = &ChatError{Op: opCompress, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "compress failed")
		s.metrics.RecordOperation(opCompress, err)
		s.logger.Warn("compress failed, history unchanged", "error", err)
		return "", err
	}

	s.history = compacted
	s.metrics.RecordOperation(opCompress, nil)
	s.logger.Info("history compressed", "before", before, "after", len(s.history))
	if s.transcript != nil {
		if err := s.transcript.SetSummary(s.id, summary); err != nil {
			s.logger.Warn("transcript summary save failed", "error", err)
		}
	}
	s.persist()
	return summary, nil
}

func finite(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}
