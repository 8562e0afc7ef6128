package numgen

import (
	"context"
	"sync"
)

// MemoryStorage keeps records in process memory
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string][]byte)}
}

// Get returns a copy of the record under key
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

// Set stores a copy of data under key
func (m *MemoryStorage) Set(_ context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes the record; a missing key is ignored
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

// Close is a no-op
func (m *MemoryStorage) Close() error { return nil }
