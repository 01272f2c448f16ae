package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/sovereign/internal/provider"
	"github.com/flemzord/sovereign/internal/provider/providertest"
	"github.com/flemzord/sovereign/internal/session"
)

func newPlanner(t *testing.T, complete func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error)) (*Planner, *session.Session, *providertest.MockProvider) {
	t.Helper()

	mock := &providertest.MockProvider{CompleteFunc: complete}
	s, err := session.New(session.DefaultConfig(), DefaultPersona, session.WithProvider(mock))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return New(s), s, mock
}

func TestPlan(t *testing.T) {
	t.Parallel()

	p, s, mock := newPlanner(t, providertest.Replies(`{"action":"stop","parameters":[],"reasoning":"wall"}`))

	cmd, err := p.Plan(context.Background(), `{"front_distance": 0.1}`)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if cmd.Action != "stop" {
		t.Errorf("Action = %q, want stop", cmd.Action)
	}

	req := mock.Requests()[0]
	if got := req.Messages[len(req.Messages)-1].Content; got != `Current State: {"front_distance": 0.1}` {
		t.Errorf("sent %q", got)
	}
	if *req.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", *req.Temperature, DefaultTemperature)
	}
	if s.Persona() != DefaultPersona {
		t.Error("persona changed")
	}
}

func TestPlan_Errors(t *testing.T) {
	t.Parallel()

	p, _, _ := newPlanner(t, providertest.Replies("I think the robot should stop."))
	_, err := p.Plan(context.Background(), "x")
	var re *ReplyError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ReplyError", err)
	}
	if re.Reply != "I think the robot should stop." {
		t.Errorf("Reply = %q", re.Reply)
	}
	if !errors.Is(err, ErrInvalidCommand) {
		t.Error("ReplyError should wrap ErrInvalidCommand")
	}

	p, _, _ = newPlanner(t, providertest.Fail(provider.KindUnreachable))
	_, err = p.Plan(context.Background(), "x")
	var ce *session.ChatError
	if !errors.As(err, &ce) || !errors.Is(err, provider.ErrUnreachable) {
		t.Errorf("err = %v, want unreachable ChatError", err)
	}
}

func TestPlan_CustomTemperature(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{CompleteFunc: providertest.Replies(`{"action":"go"}`)}
	s, err := session.New(session.DefaultConfig(), DefaultPersona, session.WithProvider(mock))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(s, WithTemperature(0)).Plan(context.Background(), "x"); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if *mock.Requests()[0].Temperature != 0 {
		t.Errorf("temperature = %v, want 0", *mock.Requests()[0].Temperature)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	p, _, _ := newPlanner(t, providertest.Replies(
		"```json\n{\"action\":\"forward\",\"parameters\":[1]}\n```",
		"no idea",
		`{"action":"stop","parameters":[],"reasoning":"done"}`,
	))

	in := strings.NewReader("{\"s\":1}\n\n{\"s\":2}\n{\"s\":3}\n")
	var out bytes.Buffer

	stats, err := p.Run(context.Background(), in, &out, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats != (Stats{Received: 3, Published: 2, Rejected: 1}) {
		t.Errorf("stats = %+v", stats)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("published %d lines, want 2: %q", len(lines), out.String())
	}
	var first Command
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first.Action != "forward" {
		t.Errorf("first action = %q", first.Action)
	}
}

func TestRun_FailedExchangeIsSkipped(t *testing.T) {
	t.Parallel()

	var n int
	p, _, _ := newPlanner(t, func(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
		n++
		if n == 1 {
			return provider.CompletionResponse{}, &provider.TransportError{Kind: provider.KindTimeout}
		}
		return provider.CompletionResponse{Content: `{"action":"retry"}`}, nil
	})

	var out bytes.Buffer
	stats, err := p.Run(context.Background(), strings.NewReader("a\nb\n"), &out, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 || stats.Published != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

// blockingReader yields its lines and then blocks until closed.
type blockingReader struct {
	r    io.Reader
	done chan struct{}
	once sync.Once
}

func (b *blockingReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		<-b.done
	}
	return n, err
}

func (b *blockingReader) Close() { b.once.Do(func() { close(b.done) }) }

func TestRun_CompressSignal(t *testing.T) {
	t.Parallel()

	p, s, mock := newPlanner(t, providertest.Replies(`{"action":"a"}`, "summary"))

	in := &blockingReader{r: strings.NewReader("s1\n"), done: make(chan struct{})}
	defer in.Close()

	compress := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, in, &out, compress)
		done <- err
	}()

	waitFor(t, func() bool { return mock.CompleteCalls() == 1 })
	compress <- struct{}{}
	waitFor(t, func() bool { return mock.CompleteCalls() == 2 })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run err = %v, want context.Canceled", err)
	}

	// Read the session only after Run has returned.
	if s.Len() != 2 {
		t.Errorf("history len = %d, want 2 after compression", s.Len())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
