package store

import (
	"context"
	"sort"
	"sync"

	"github.com/playbooklab/sdk/canvas"
)

// MemoryStore is an in-memory Store. Sessions and the published feed live
// for the lifetime of the process, matching the demo's behavior where a
// reload starts fresh.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]canvas.Snapshot
	feed     []PublishedPlaybook
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]canvas.Snapshot),
	}
}

// SaveSession stores a snapshot, replacing any existing one for the same id.
func (s *MemoryStore) SaveSession(_ context.Context, snap canvas.Snapshot) error {
	if snap.SessionID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.sessions[snap.SessionID] = snap
	return nil
}

// LoadSession returns the snapshot for the given session id.
func (s *MemoryStore) LoadSession(_ context.Context, sessionID string) (canvas.Snapshot, error) {
	if sessionID == "" {
		return canvas.Snapshot{}, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return canvas.Snapshot{}, ErrClosed
	}

	snap, ok := s.sessions[sessionID]
	if !ok {
		return canvas.Snapshot{}, ErrSessionNotFound
	}
	return snap, nil
}

// DeleteSession removes a session's snapshot.
func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// ListSessions returns the ids of all stored sessions, sorted for stable
// output.
func (s *MemoryStore) ListSessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// PublishPlaybook prepends an entry to the feed.
func (s *MemoryStore) PublishPlaybook(_ context.Context, pb PublishedPlaybook) error {
	if pb.ID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.feed = append([]PublishedPlaybook{pb}, s.feed...)
	return nil
}

// Feed returns up to limit entries, newest first.
func (s *MemoryStore) Feed(_ context.Context, limit int) ([]PublishedPlaybook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	if limit <= 0 || limit > len(s.feed) {
		limit = len(s.feed)
	}
	out := make([]PublishedPlaybook, limit)
	copy(out, s.feed[:limit])
	return out, nil
}

// Close marks the store closed. Subsequent operations return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
