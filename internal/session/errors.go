package session

import (
	"errors"

	"github.com/flemzord/sovereign/internal/provider"
)

// Sentinel errors for session operations.
var (
	// ErrNothingToUndo indicates the history holds only the system turn.
	ErrNothingToUndo = errors.New("session: nothing to undo")

	// ErrInvalidTranscript indicates a stored transcript cannot seed a session.
	ErrInvalidTranscript = errors.New("session: invalid transcript")

	// ErrInvalidTemperature indicates a NaN or infinite sampling
	// temperature. Such a request cannot be encoded.
	ErrInvalidTemperature = errors.New("session: temperature must be a finite number")
)

// ChatError reports a failed exchange. Err is normally a
// *provider.TransportError, so errors.Is against the provider sentinels
// works through it.
type ChatError struct {
	// Op is the session operation that failed: "chat" or "compress".
	Op  string
	Err error
}

// Error implements error.
func (e *ChatError) Error() string {
	return "session: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the transport failure.
func (e *ChatError) Unwrap() error {
	return e.Err
}

// Kind returns the transport failure kind, or 0 when the cause is not a
// transport error.
func (e *ChatError) Kind() provider.ErrorKind {
	return provider.KindOf(e.Err)
}
