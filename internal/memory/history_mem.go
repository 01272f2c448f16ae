package memory

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/flemzord/sovereign/internal/provider"
)

// sessionData holds the history and summary for a single session.
type sessionData struct {
	messages  []provider.LLMMessage
	summary   string
	updatedAt time.Time
}

// InMemoryHistoryStore is a thread-safe, in-memory implementation of HistoryStore.
type InMemoryHistoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionData
	now      func() time.Time
}

// NewInMemoryHistoryStore creates a new empty history store.
func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		sessions: make(map[string]*sessionData),
		now:      time.Now,
	}
}

// Compile-time interface check.
var _ HistoryStore = (*InMemoryHistoryStore)(nil)

func (s *InMemoryHistoryStore) getOrCreate(sessionID string) *sessionData {
	sd, ok := s.sessions[sessionID]
	if !ok {
		sd = &sessionData{}
		s.sessions[sessionID] = sd
	}
	return sd
}

// Save replaces the stored history of a session.
func (s *InMemoryHistoryStore) Save(sessionID string, msgs []provider.LLMMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd := s.getOrCreate(sessionID)
	sd.messages = slices.Clone(msgs)
	sd.updatedAt = s.now()
	return nil
}

// Load returns a copy of the stored history.
func (s *InMemoryHistoryStore) Load(sessionID string) ([]provider.LLMMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sd, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return slices.Clone(sd.messages), nil
}

// SetSummary stores a compaction summary for a session.
func (s *InMemoryHistoryStore) SetSummary(sessionID string, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd := s.getOrCreate(sessionID)
	sd.summary = summary
	sd.updatedAt = s.now()
	return nil
}

// GetSummary returns the stored summary for a session.
func (s *InMemoryHistoryStore) GetSummary(sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sd, ok := s.sessions[sessionID]
	if !ok {
		return "", nil
	}
	return sd.summary, nil
}

// Sessions lists stored transcripts, most recently updated first.
func (s *InMemoryHistoryStore) Sessions() ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.sessions))
	for id, sd := range s.sessions {
		infos = append(infos, SessionInfo{ID: id, Turns: len(sd.messages), UpdatedAt: sd.updatedAt})
	}
	slices.SortFunc(infos, func(a, b SessionInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return infos, nil
}

// Purge removes all history and summary for a session.
func (s *InMemoryHistoryStore) Purge(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of messages stored for a session.
func (s *InMemoryHistoryStore) Len(sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sd, ok := s.sessions[sessionID]
	if !ok {
		return 0, nil
	}
	return len(sd.messages), nil
}
