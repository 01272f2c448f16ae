package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/sovereign/internal/provider/providertest"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestRun_WriteFailureStopsRun(t *testing.T) {
	t.Parallel()

	p, _, mock := newPlanner(t, providertest.Replies(`{"action":"go"}`))

	in := strings.NewReader("s1\ns2\ns3\ns4\n")
	stats, err := p.Run(context.Background(), in, failingWriter{}, nil)
	if err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("Run err = %v, want write failure", err)
	}
	if stats.Published != 0 || stats.Received != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if mock.CompleteCalls() != 1 {
		t.Errorf("CompleteCalls = %d, want 1", mock.CompleteCalls())
	}
}

// endlessReader yields "tick\n" forever.
type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	const line = "tick\n"
	n := 0
	for n+len(line) <= len(p) {
		n += copy(p[n:], line)
	}
	return n, nil
}

func TestScanLines_StopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	lines, _ := scanLines(ctx, endlessReader{})

	if got := <-lines; got != "tick" {
		t.Fatalf("first line = %q", got)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("scanner goroutine did not stop after cancel")
		}
	}
}

func TestScanLines_ReadsToEnd(t *testing.T) {
	t.Parallel()

	lines, scanErr := scanLines(context.Background(), strings.NewReader("a\n\nb"))

	var got []string
	for l := range lines {
		got = append(got, l)
	}
	if strings.Join(got, "|") != "a||b" {
		t.Errorf("lines = %q", got)
	}
	if err := <-scanErr; err != nil {
		t.Errorf("scan error = %v", err)
	}
}
