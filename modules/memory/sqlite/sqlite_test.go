package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/sovereign/internal/memory"
	"github.com/flemzord/sovereign/internal/provider"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func conversation(n int) []provider.LLMMessage {
	msgs := []provider.LLMMessage{{Role: provider.MessageRoleSystem, Content: "persona"}}
	for i := range n {
		msgs = append(msgs,
			provider.LLMMessage{Role: provider.MessageRoleUser, Content: fmt.Sprintf("q%d", i)},
			provider.LLMMessage{Role: provider.MessageRoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	return msgs
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.Path != defaultDBFile {
		t.Errorf("Path = %q, want %q", c.Path, defaultDBFile)
	}
	if !c.walEnabled() {
		t.Error("WAL should default to enabled")
	}
	if c.BusyTimeout != defaultBusyTimeout {
		t.Errorf("BusyTimeout = %d, want %d", c.BusyTimeout, defaultBusyTimeout)
	}
}

func TestOpenRejectsNegativeBusyTimeout(t *testing.T) {
	_, err := Open(Config{Path: filepath.Join(t.TempDir(), "x.db"), BusyTimeout: -1})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenWithoutWAL(t *testing.T) {
	off := false
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "x.db"), WAL: &off})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	var mode string
	if err := s.db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode == "wal" {
		t.Errorf("journal_mode = %q, want non-WAL", mode)
	}
}

func TestSaveReplacesSnapshot(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("s1", conversation(3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A shorter snapshot (eviction, undo, compaction) must not leave stale rows.
	short := conversation(1)
	if err := s.Save("s1", short); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load("s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(short) {
		t.Fatalf("got %d messages, want %d", len(got), len(short))
	}
	for i := range short {
		if got[i] != short[i] {
			t.Errorf("message %d: got %+v, want %+v", i, got[i], short[i])
		}
	}
}

func TestLoadUnknownSession(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("nope")
	if !errors.Is(err, memory.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestLoadEmptySnapshot(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("s1", nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load("s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d messages, want 0", len(got))
	}
}

func TestSessionsOrderAndCounts(t *testing.T) {
	s := newTestStore(t)

	for _, step := range []struct {
		id    string
		pairs int
	}{
		{"a", 1}, {"b", 2}, {"c", 0}, {"a", 3},
	} {
		if err := s.Save(step.id, conversation(step.pairs)); err != nil {
			t.Fatalf("save %s: %v", step.id, err)
		}
	}

	infos, err := s.Sessions()
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}

	want := []struct {
		id    string
		turns int
	}{{"a", 7}, {"c", 1}, {"b", 5}}
	if len(infos) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(infos), len(want))
	}
	for i, w := range want {
		if infos[i].ID != w.id || infos[i].Turns != w.turns {
			t.Errorf("sessions[%d] = %+v, want id=%s turns=%d", i, infos[i], w.id, w.turns)
		}
		if time.Since(infos[i].UpdatedAt) > time.Hour {
			t.Errorf("sessions[%d].UpdatedAt = %v, want recent", i, infos[i].UpdatedAt)
		}
	}
}

func TestSummary(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSummary("s1")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if got != "" {
		t.Errorf("summary = %q, want empty", got)
	}

	if err := s.SetSummary("s1", "first"); err != nil {
		t.Fatalf("set summary: %v", err)
	}
	if err := s.SetSummary("s1", "second"); err != nil {
		t.Fatalf("set summary: %v", err)
	}

	got, err = s.GetSummary("s1")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if got != "second" {
		t.Errorf("summary = %q, want second", got)
	}
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("s1", conversation(2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("s2", conversation(1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SetSummary("s1", "sum"); err != nil {
		t.Fatalf("set summary: %v", err)
	}

	if err := s.Purge("s1"); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := s.Load("s1"); !errors.Is(err, memory.ErrSessionNotFound) {
		t.Errorf("load after purge: err = %v, want ErrSessionNotFound", err)
	}
	if n, _ := s.Len("s1"); n != 0 {
		t.Errorf("len after purge = %d, want 0", n)
	}
	if sum, _ := s.GetSummary("s1"); sum != "" {
		t.Errorf("summary after purge = %q, want empty", sum)
	}
	if n, _ := s.Len("s2"); n != 3 {
		t.Errorf("s2 len = %d, want 3 (untouched)", n)
	}
}

func TestConcurrentSaves(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			for j := range 5 {
				if err := s.Save(id, conversation(j)); err != nil {
					t.Errorf("save %s: %v", id, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	infos, err := s.Sessions()
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(infos) != 8 {
		t.Fatalf("got %d sessions, want 8", len(infos))
	}
	for _, info := range infos {
		if info.Turns != 9 {
			t.Errorf("%s turns = %d, want 9", info.ID, info.Turns)
		}
	}
}
