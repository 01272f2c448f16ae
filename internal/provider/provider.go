// Package provider defines the contract between a conversation session and
// the remote chat-completion service that produces model replies.
package provider

import "context"

// Provider performs one synchronous exchange with a chat-completion
// endpoint. Implementations hold no per-call state and must be safe for
// concurrent use by independent sessions.
type Provider interface {
	// Complete submits the full message list and returns the reply.
	// Failures are reported as *TransportError.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// to support a lightweight availability probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
