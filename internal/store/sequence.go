package store

import (
	"context"
	"fmt"
)

// Sequence hands out monotonically increasing ids per key. Ids are never
// reused, even after the record that used them is deleted.
type Sequence struct {
	counters *Collection[int]
}

// NewSequence creates a sequence generator persisted in the sequences store.
func NewSequence(backend Backend) *Sequence {
	return &Sequence{counters: NewCollection[int](backend, Sequences)}
}

// Next returns the next id for key. floor is the highest id already in use,
// which lets the counter catch up with records written before it existed.
func (s *Sequence) Next(ctx context.Context, key string, floor int) (int, error) {
	var next int
	err := s.counters.Update(ctx, func(counters map[string]int) error {
		next = max(counters[key], floor) + 1
		counters[key] = next
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", key, err)
	}
	return next, nil
}
