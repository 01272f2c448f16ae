// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"slices"
	"sync"

	"github.com/flemzord/sovereign/internal/provider"
)

// MockProvider is a configurable test double for provider.Provider.
// Set the Func fields to control behavior. An unset CompleteFunc panics
// on call. All methods are safe for concurrent use.
type MockProvider struct {
	CompleteFunc    func(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error)
	HealthCheckFunc func(ctx context.Context) error
	Model           string

	mu          sync.Mutex
	requests    []provider.CompletionRequest
	HealthCalls int
}

// Complete records a copy of req and delegates to CompleteFunc.
func (m *MockProvider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	m.mu.Lock()
	req.Messages = slices.Clone(req.Messages)
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// ModelName returns Model.
func (m *MockProvider) ModelName() string {
	return m.Model
}

// HealthCheck delegates to HealthCheckFunc and tracks call count.
// A nil HealthCheckFunc reports healthy.
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()
	if m.HealthCheckFunc == nil {
		return nil
	}
	return m.HealthCheckFunc(ctx)
}

// Requests returns the requests received so far, oldest first.
func (m *MockProvider) Requests() []provider.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// CompleteCalls returns how many times Complete was called.
func (m *MockProvider) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Replies returns a CompleteFunc that answers with each reply in turn and
// keeps repeating the last one.
func Replies(replies ...string) func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
	var (
		mu sync.Mutex
		i  int
	)
	return func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		reply := replies[min(i, len(replies)-1)]
		i++
		return provider.CompletionResponse{Content: reply}, nil
	}
}

// Fail returns a CompleteFunc that always fails with a transport error of
// the given kind.
func Fail(kind provider.ErrorKind) func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
	return func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
		return provider.CompletionResponse{}, &provider.TransportError{Kind: kind}
	}
}

// Interface guards.
var (
	_ provider.Provider      = (*MockProvider)(nil)
	_ provider.HealthChecker = (*MockProvider)(nil)
)
