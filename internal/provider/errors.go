package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per transport failure kind. A *TransportError
// matches its kind's sentinel with errors.Is.
var (
	// ErrUnreachable indicates the endpoint could not be reached.
	ErrUnreachable = errors.New("endpoint unreachable")

	// ErrTimeout indicates the bounded wait expired before a reply arrived.
	ErrTimeout = errors.New("request timed out")

	// ErrServerError indicates the endpoint answered with a non-2xx status.
	ErrServerError = errors.New("server error")

	// ErrMalformedResponse indicates the reply body did not match the
	// expected schema.
	ErrMalformedResponse = errors.New("malformed response")
)

// ErrorKind classifies a transport failure.
type ErrorKind int

// ErrorKind values.
const (
	KindUnreachable ErrorKind = iota + 1
	KindTimeout
	KindServerError
	KindMalformedResponse
)

// String returns a human-readable label for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnreachable:
		return ErrUnreachable
	case KindTimeout:
		return ErrTimeout
	case KindServerError:
		return ErrServerError
	case KindMalformedResponse:
		return ErrMalformedResponse
	default:
		return nil
	}
}

// TransportError is the typed outcome of a failed exchange.
type TransportError struct {
	Kind ErrorKind
	// Status is the HTTP status code. Only set for KindServerError.
	Status int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Kind == KindServerError {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *TransportError) Unwrap() []error {
	var errs []error
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of the first *TransportError in err's chain,
// or 0 if there is none.
func KindOf(err error) ErrorKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by a server error in err's
// chain, or 0.
func StatusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) && te.Kind == KindServerError {
		return te.Status
	}
	return 0
}
