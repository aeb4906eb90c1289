package session

import (
	"context"
	"sync"
	"time"

	"nuanswers/domain/core"
	"nuanswers/internal/errors"
	"nuanswers/ports"
)

// MemoryStore is a process-local SessionStore with per-entry expiry
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

var _ ports.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Load returns the stored bytes, or nil if absent or expired
func (s *MemoryStore) Load(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, nil
	}
	return append([]byte(nil), e.data...), nil
}

// Save stores data for ttl; a zero ttl never expires
func (s *MemoryStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[id] = e
	return nil
}

// Delete removes an entry
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Repository loads and saves State through a SessionStore
type Repository struct {
	store ports.SessionStore
	ttl   time.Duration
}

// NewRepository wraps store; ttl bounds idle sessions
func NewRepository(store ports.SessionStore, ttl time.Duration) *Repository {
	return &Repository{store: store, ttl: ttl}
}

// Load returns the session for id, or a fresh one if none is stored
func (r *Repository) Load(ctx context.Context, id core.SessionID) (*State, error) {
	data, err := r.store.Load(ctx, id.String())
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	if data == nil {
		return New(id), nil
	}
	st, err := Unmarshal(data)
	if err != nil {
		// unreadable state starts a fresh session
		return New(id), nil
	}
	st.ID = id
	return st, nil
}

// Save persists st
func (r *Repository) Save(ctx context.Context, st *State) error {
	data, err := st.Marshal()
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := r.store.Save(ctx, st.ID.String(), data, r.ttl); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}
