package session

import (
	"github.com/flemzord/sovereign/internal/provider"
)

// SetPersona discards the whole history and starts over with persona as
// the system turn.
func (s *Session) SetPersona(persona string) {
	dropped := len(s.history) - 1
	s.reset(persona)
	s.metrics.RecordOperation(opPersona, nil)
	s.logger.Info("persona updated", "dropped_turns", dropped)
	s.persist()
}

// Clear wipes the conversation but keeps the current persona.
func (s *Session) Clear() {
	dropped := len(s.history) - 1
	s.reset(s.Persona())
	s.metrics.RecordOperation(opClear, nil)
	s.logger.Info("history cleared", "dropped_turns", dropped)
	s.persist()
}

// Undo removes the most recent exchange: the assistant turn, then the
// user turn before it. A trailing user turn with no reply (left by a
// failed Chat) is removed on its own. The system turn is never removed;
// with nothing else in the history Undo returns ErrNothingToUndo.
func (s *Session) Undo() error {
	if len(s.history) <= 1 {
		s.metrics.RecordOperation(opUndo, ErrNothingToUndo)
		return ErrNothingToUndo
	}

	n := 2
	if s.history[len(s.history)-1].Role == provider.MessageRoleUser {
		n = 1
	}
	n = min(n, len(s.history)-1)

	keep := len(s.history) - n
	clear(s.history[keep:])
	s.history = s.history[:keep]

	s.metrics.RecordOperation(opUndo, nil)
	s.logger.Debug("undo", "removed", n, "turns", len(s.history))
	s.persist()
	return nil
}
