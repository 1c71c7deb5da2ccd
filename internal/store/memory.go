package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"order-app/internal/model"
)

// MemoryBackend keeps encoded stores in memory. Reads always decode a fresh
// copy, so callers never share maps.
type MemoryBackend struct {
	mu     sync.Mutex
	stores map[Name][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{stores: make(map[Name][]byte)}
}

// Init creates an empty store unless it already exists.
func (b *MemoryBackend) Init(_ context.Context, name Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.stores[name]; !ok {
		b.stores[name] = []byte("{}")
	}
	return nil
}

// Read decodes the stored mapping.
func (b *MemoryBackend) Read(_ context.Context, name Name) (map[string]json.RawMessage, error) {
	b.mu.Lock()
	data, ok := b.stores[name]
	b.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("store %s: %w", name, model.ErrUninitializedStore)
	}

	records := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse store %s: %w", name, err)
	}
	return records, nil
}

// Write replaces the stored mapping.
func (b *MemoryBackend) Write(_ context.Context, name Name, records map[string]json.RawMessage) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode store %s: %w", name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.stores[name]; !ok {
		return fmt.Errorf("store %s: %w", name, model.ErrUninitializedStore)
	}
	b.stores[name] = data
	return nil
}
