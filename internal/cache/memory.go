package cache

import "sync"

// Memory is an in-process Snapshots implementation, used in tests and for
// clients that do not want a durable warm start.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory snapshot cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Put stores data under key.
func (m *Memory) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Get returns the snapshot stored under key, or ErrNoSnapshot.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), data...), nil
}
