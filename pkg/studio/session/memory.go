package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory session store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu        sync.RWMutex
	state     State
	snapshots map[string]Snapshot
	closed    bool
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

// LoadState implements Store.
func (m *MemoryStore) LoadState() (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return State{}, ErrStoreClosed
	}
	return m.state, nil
}

// SaveState implements Store.
func (m *MemoryStore) SaveState(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.state = state
	return nil
}

// ClearState implements Store.
func (m *MemoryStore) ClearState() error {
	return m.SaveState(State{})
}

// SaveSnapshot implements Store.
func (m *MemoryStore) SaveSnapshot(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrStoreClosed
	}

	// Copy data to avoid retaining caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)

	id := uuid.NewString()
	m.snapshots[id] = Snapshot{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Data:      stored,
	}
	return id, nil
}

// LoadSnapshot implements Store.
func (m *MemoryStore) LoadSnapshot(id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Snapshot{}, ErrStoreClosed
	}
	snap, ok := m.snapshots[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// ListSnapshots implements Store.
func (m *MemoryStore) ListSnapshots() ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	snaps := make([]Snapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		snap.Data = nil
		snaps = append(snaps, snap)
	}
	// Newest first, matching the SQLite store's ordering.
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

// DeleteSnapshot implements Store.
func (m *MemoryStore) DeleteSnapshot(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.snapshots, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
