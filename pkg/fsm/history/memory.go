package history

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory snapshot store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]map[int]storedSnapshot // runID -> sequence -> snapshot
	closed bool
}

type storedSnapshot struct {
	data      []byte
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]map[int]storedSnapshot),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(runID string, sequence int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.runs[runID] == nil {
		m.runs[runID] = make(map[int]storedSnapshot)
	}

	// Copy to avoid retaining the caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)

	m.runs[runID][sequence] = storedSnapshot{
		data:      stored,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(runID string, sequence int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := run[sequence]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(runID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run, ok := m.runs[runID]
	if !ok || len(run) == 0 {
		return nil, ErrNotFound
	}

	best := -1
	for seq := range run {
		if seq > best {
			best = seq
		}
	}

	s := run[best]
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// List implements Store.
func (m *MemoryStore) List(runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}

	infos := make([]Info, 0, len(run))
	for seq, s := range run {
		infos = append(infos, Info{
			RunID:     runID,
			Sequence:  seq,
			Timestamp: s.timestamp,
			Size:      int64(len(s.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.runs, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	return nil
}

// Len returns the total number of snapshots across all runs.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.runs {
		count += len(run)
	}
	return count
}
