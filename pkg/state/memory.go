package state

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in memory. Used by tests and by watch
// runs that only need the previous snapshot of the same process.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []*Snapshot
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save appends s.
func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
	return nil
}

// Load returns the last saved snapshot.
func (m *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.snapshots) == 0 {
		return nil, ErrNotFound
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

// Len returns the number of saved snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Close does nothing.
func (m *MemoryStore) Close() error {
	return nil
}
