package session_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/flemzord/sovereign/internal/provider"
	"github.com/flemzord/sovereign/internal/provider/providertest"
	"github.com/flemzord/sovereign/internal/session"
)

// newTestSession builds a session over a mock provider.
func newTestSession(t *testing.T, maxHistory int, complete func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error), opts ...session.Option) (*session.Session, *providertest.MockProvider) {
	t.Helper()

	mock := &providertest.MockProvider{CompleteFunc: complete, Model: "test-model"}
	cfg := session.DefaultConfig()
	cfg.MaxHistory = maxHistory

	opts = append([]session.Option{session.WithProvider(mock)}, opts...)
	s, err := session.New(cfg, "persona", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, mock
}

// echo answers every request with "re: <last user content>".
func echo(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	last := req.Messages[len(req.Messages)-1]
	return provider.CompletionResponse{Content: "re: " + last.Content}, nil
}

func mustChat(t *testing.T, s *session.Session, text string) string {
	t.Helper()
	reply, err := s.Chat(context.Background(), text)
	if err != nil {
		t.Fatalf("Chat(%q): %v", text, err)
	}
	return reply
}

func assertHistory(t *testing.T, got []provider.LLMMessage, want ...provider.LLMMessage) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("history length = %d, want %d\n got: %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func sys(c string) provider.LLMMessage  { return provider.NewMessage(provider.MessageRoleSystem, c) }
func user(c string) provider.LLMMessage { return provider.NewMessage(provider.MessageRoleUser, c) }
func asst(c string) provider.LLMMessage { return provider.NewMessage(provider.MessageRoleAssistant, c) }

func turnText(i int) string { return fmt.Sprintf("turn%d", i) }
