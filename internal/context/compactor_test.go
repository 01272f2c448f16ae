package ctxengine_test

import (
	"context"
	"errors"
	"testing"

	ctxengine "github.com/flemzord/sovereign/internal/context"
	"github.com/flemzord/sovereign/internal/provider"
	"github.com/flemzord/sovereign/internal/provider/providertest"
)

func TestCompactor_Compact(t *testing.T) {
	t.Parallel()

	summarizer := &mockSummarizer{result: "we talked about op-amps"}
	c := ctxengine.NewCompactor(summarizer)

	history := makeHistory(6)
	summary, got, err := c.Compact(context.Background(), "tutor", history)
	if err != nil {
		t.Fatalf("Compact returned unexpected error: %v", err)
	}

	if summary != "we talked about op-amps" {
		t.Errorf("summary = %q", summary)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Role != provider.MessageRoleSystem || got[0].Content != "tutor" {
		t.Errorf("got[0] = %+v, want system(tutor)", got[0])
	}
	want := "MEMORY CONTEXT: we talked about op-amps"
	if got[1].Role != provider.MessageRoleAssistant || got[1].Content != want {
		t.Errorf("got[1] = %+v, want assistant(%q)", got[1], want)
	}
	if len(summarizer.got) != len(history) {
		t.Errorf("summarizer saw %d messages, want %d", len(summarizer.got), len(history))
	}
}

func TestCompactor_Compact_Error(t *testing.T) {
	t.Parallel()

	summarizeErr := errors.New("summarizer failed")
	c := ctxengine.NewCompactor(&mockSummarizer{err: summarizeErr})

	history := makeHistory(4)
	_, got, err := c.Compact(context.Background(), "persona", history)
	if err == nil {
		t.Fatal("expected error from Compact, got nil")
	}
	if !errors.Is(err, summarizeErr) || !errors.Is(err, ctxengine.ErrCompactionFailed) {
		t.Errorf("error chain = %v, want summarizer error and ErrCompactionFailed", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil on error", got)
	}
	if len(history) != 5 || history[4].Content != "msg-4" {
		t.Errorf("input history modified: %+v", history)
	}
}

func TestCompactor_NoSummarizer(t *testing.T) {
	t.Parallel()

	c := ctxengine.NewCompactor(nil)
	_, _, err := c.Compact(context.Background(), "persona", makeHistory(2))
	if !errors.Is(err, ctxengine.ErrCompactionFailed) {
		t.Errorf("err = %v, want ErrCompactionFailed", err)
	}
}

func TestProviderSummarizer_AppendsInstruction(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{CompleteFunc: providertest.Replies("summary")}
	s := ctxengine.ProviderSummarizer{Provider: mock, Temperature: provider.Float64(0.7)}

	history := makeHistory(2)
	got, err := s.Summarize(context.Background(), history)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "summary" {
		t.Errorf("summary = %q", got)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	msgs := reqs[0].Messages
	if len(msgs) != len(history)+1 {
		t.Fatalf("sent %d messages, want %d", len(msgs), len(history)+1)
	}
	last := msgs[len(msgs)-1]
	if last.Role != provider.MessageRoleUser || last.Content != ctxengine.SummaryInstruction {
		t.Errorf("last message = %+v, want summary instruction", last)
	}
	if reqs[0].Temperature == nil || *reqs[0].Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", reqs[0].Temperature)
	}
	if len(history) != 3 {
		t.Errorf("input history grew to %d", len(history))
	}
}

func TestProviderSummarizer_PropagatesTransportError(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{CompleteFunc: providertest.Fail(provider.KindUnreachable)}
	s := ctxengine.ProviderSummarizer{Provider: mock}

	_, err := s.Summarize(context.Background(), makeHistory(2))
	if !errors.Is(err, provider.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}
