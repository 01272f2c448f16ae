// Package memory provides the transcript store that mirrors a session's
// history outside the process, with an in-memory implementation.
package memory

import (
	"errors"
	"time"

	"github.com/flemzord/sovereign/internal/provider"
)

// ErrSessionNotFound is returned by Load when no transcript exists.
var ErrSessionNotFound = errors.New("memory: session not found")

// SessionInfo describes one stored transcript.
type SessionInfo struct {
	ID        string
	Turns     int
	UpdatedAt time.Time
}

// HistoryStore persists session transcripts. Save replaces the stored
// snapshot wholesale, so eviction, undo and compaction are mirrored
// exactly. Implementations must be safe for concurrent use.
type HistoryStore interface {
	// Save replaces the stored history of a session.
	Save(sessionID string, msgs []provider.LLMMessage) error

	// Load returns the stored history of a session in chronological
	// order, or ErrSessionNotFound.
	Load(sessionID string) ([]provider.LLMMessage, error)

	// SetSummary stores the latest compaction summary for a session,
	// replacing any previous one.
	SetSummary(sessionID string, summary string) error

	// GetSummary returns the stored summary for a session.
	// Returns an empty string if no summary exists.
	GetSummary(sessionID string) (string, error)

	// Sessions lists stored transcripts, most recently updated first.
	Sessions() ([]SessionInfo, error)

	// Purge removes all history and summary for a session.
	Purge(sessionID string) error

	// Len returns the number of messages stored for a session.
	Len(sessionID string) (int, error)
}
