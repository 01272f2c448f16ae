package ctxengine_test

import (
	"context"
	"fmt"

	"github.com/flemzord/sovereign/internal/provider"
)

// mockSummarizer implements ctxengine.Summarizer for tests.
type mockSummarizer struct {
	result string
	err    error
	called int
	got    []provider.LLMMessage
}

func (m *mockSummarizer) Summarize(_ context.Context, msgs []provider.LLMMessage) (string, error) {
	m.called++
	m.got = msgs
	return m.result, m.err
}

// makeHistory creates a system turn followed by n alternating user/assistant turns.
func makeHistory(n int) []provider.LLMMessage {
	msgs := make([]provider.LLMMessage, n+1)
	msgs[0] = provider.NewMessage(provider.MessageRoleSystem, "persona")
	for i := 1; i <= n; i++ {
		role := provider.MessageRoleUser
		if i%2 == 0 {
			role = provider.MessageRoleAssistant
		}
		msgs[i] = provider.NewMessage(role, fmt.Sprintf("msg-%d", i))
	}
	return msgs
}
