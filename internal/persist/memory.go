package persist

import (
	"context"
	"sync"
)

// NewMemoryBackend returns a Backend backed by an in-memory map.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

// MemoryBackend implements Backend for tests and throwaway local runs.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// Get returns a copy of the value stored under key.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	value, ok := b.values[key]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under key.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	b.values[key] = append([]byte(nil), value...)
	b.mu.Unlock()
	return nil
}

// Delete removes the value stored under key.
func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.values, key)
	b.mu.Unlock()
	return nil
}

// Has reports whether a key exists. Useful for tests.
func (b *MemoryBackend) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.values[key]
	return ok
}
