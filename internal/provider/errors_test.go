package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrUnreachable,
		ErrTimeout,
		ErrServerError,
		ErrMalformedResponse,
	}

	for i, a := range sentinels {
		if a.Error() == "" {
			t.Fatalf("sentinel error %d must have a non-empty message", i)
		}
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel errors must be distinct: %v and %v", a, b)
			}
		}
	}
}

func TestTransportError_Is(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind ErrorKind
		want error
	}{
		{"unreachable", KindUnreachable, ErrUnreachable},
		{"timeout", KindTimeout, ErrTimeout},
		{"server error", KindServerError, ErrServerError},
		{"malformed", KindMalformedResponse, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := fmt.Errorf("wrapped: %w", &TransportError{Kind: tt.kind})
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.want)
			}
			if got := KindOf(err); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestTransportError_UnwrapsCause(t *testing.T) {
	t.Parallel()

	err := &TransportError{Kind: KindTimeout, Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable through errors.Is")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected kind sentinel to be reachable through errors.Is")
	}
}

func TestTransportError_Message(t *testing.T) {
	t.Parallel()

	err := &TransportError{Kind: KindServerError, Status: 502, Err: errors.New("bad gateway")}
	msg := err.Error()
	for _, want := range []string{"server error", "502", "bad gateway"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
	if StatusOf(err) != 502 {
		t.Errorf("StatusOf = %d, want 502", StatusOf(err))
	}
}

func TestKindOf_NonTransport(t *testing.T) {
	t.Parallel()

	if got := KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", got)
	}
	if got := StatusOf(&TransportError{Kind: KindTimeout}); got != 0 {
		t.Errorf("StatusOf(timeout) = %d, want 0", got)
	}
	if got := ErrorKind(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
