package history

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/toolmesh/core"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("conversation not found")

// InMemoryStore is a process local HistoryStore guarded by an RWMutex.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]core.Conversation
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]core.Conversation)}
}

// Archive stores c, replacing an earlier archive of the same session.
func (s *InMemoryStore) Archive(c core.Conversation) error {
	if c.SessionID == "" {
		return errors.New("conversation without session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.SessionID] = c
	return nil
}

// Get returns the archived conversation of sessionID.
func (s *InMemoryStore) Get(sessionID string) (core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[sessionID]
	if !ok {
		return core.Conversation{}, ErrNotFound
	}
	return c, nil
}

// List returns up to limit conversations, most recently ended first. A limit
// <= 0 returns all of them.
func (s *InMemoryStore) List(limit int) ([]core.Conversation, error) {
	return s.Search("", limit)
}

// Search returns conversations whose title or transcript contains query,
// case-insensitively, most recently ended first.
func (s *InMemoryStore) Search(query string, limit int) ([]core.Conversation, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	out := make([]core.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Transcript), q) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b core.Conversation) int {
		if c := b.EndedAt.Compare(a.EndedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SessionID, b.SessionID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes the conversation of sessionID.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.conversations, sessionID)
	return nil
}

func (s *InMemoryStore) all() []core.Conversation {
	out, _ := s.List(0)
	return out
}
