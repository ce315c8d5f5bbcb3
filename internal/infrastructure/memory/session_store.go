// Package memory keeps session state in process memory.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// SessionStore implements application.SessionStore with a mutex-guarded map.
// States are stored encoded so callers never share a *State.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ application.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an in-memory store. ttl <= 0 keeps sessions forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*application.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	e, ok := s.entries[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var state application.State
	if err := json.Unmarshal(e.payload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *SessionStore) Save(_ context.Context, sessionID string, state *application.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{payload: payload}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[sessionID] = e
	return nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	return len(s.entries)
}

// sweep drops expired entries. Callers hold mu.
func (s *SessionStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
