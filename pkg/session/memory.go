package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-leadform/pkg/workflow"
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTTL expires snapshots that were not saved for ttl. Zero keeps
// them forever.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithMemoryClock overrides the time source used for expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps snapshots in process. It is safe for concurrent use and
// suited to development and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Load returns the snapshot stored under id.
func (s *MemoryStore) Load(_ context.Context, id string) (workflow.Snapshot, error) {
	if !validID(id) {
		return workflow.Snapshot{}, ErrInvalidID
	}
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.expired(entry) {
		return workflow.Snapshot{}, ErrNotFound
	}

	var snap workflow.Snapshot
	if err := json.Unmarshal(entry.data, &snap); err != nil {
		return workflow.Snapshot{}, fmt.Errorf("session: decode snapshot: %w", err)
	}
	return snap, nil
}

// Save stores an encoded copy of snap, so later mutations of the caller's
// value never leak into the store.
func (s *MemoryStore) Save(_ context.Context, snap workflow.Snapshot) error {
	if !validID(snap.ID) {
		return ErrInvalidID
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session: encode snapshot: %w", err)
	}
	entry := memoryEntry{data: data}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[snap.ID] = entry
	s.sweepLocked()
	return nil
}

// Delete removes id. Deleting a missing session returns ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || s.expired(entry) {
		delete(s.entries, id)
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// Len reports how many live snapshots are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, entry := range s.entries {
		if !s.expired(entry) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expires.IsZero() && !s.now().Before(entry.expires)
}

// sweepLocked drops expired entries. Caller holds s.mu.
func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	for id, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, id)
		}
	}
}
