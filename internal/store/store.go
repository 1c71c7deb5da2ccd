// Package store persists whole-store record mappings (id -> record) through
// a pluggable Backend. Each read loads the complete mapping and each write
// replaces it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Name identifies one persisted collection.
type Name string

// Stores used by the application.
const (
	Items     Name = "items"
	Coupons   Name = "coupons"
	Orders    Name = "orders"
	Users     Name = "users"
	Sequences Name = "sequences"
)

// All lists every store Bootstrap initialises.
var All = []Name{Items, Coupons, Orders, Users, Sequences}

// Backend is the storage mechanism behind every store.
type Backend interface {
	// Init creates the store with an empty mapping. It is a no-op when the
	// store already exists.
	Init(ctx context.Context, name Name) error

	// Read returns the complete mapping. It fails with
	// model.ErrUninitializedStore when the store was never initialised.
	Read(ctx context.Context, name Name) (map[string]json.RawMessage, error)

	// Write replaces the complete mapping. It fails with
	// model.ErrUninitializedStore when the store was never initialised.
	Write(ctx context.Context, name Name, records map[string]json.RawMessage) error
}

// Bootstrap initialises every store concurrently.
func Bootstrap(ctx context.Context, backend Backend, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range All {
		g.Go(func() error {
			if err := backend.Init(ctx, name); err != nil {
				return fmt.Errorf("failed to initialise store %s: %w", name, err)
			}
			logger.Debug().Str("store", string(name)).Msg("store initialised")
			return nil
		})
	}
	return g.Wait()
}

// Collection is a typed view of one store. Use a single Collection per
// store within a process so Update calls are serialised.
type Collection[T any] struct {
	backend Backend
	name    Name
	mu      sync.Mutex
}

// NewCollection creates a typed collection over backend.
func NewCollection[T any](backend Backend, name Name) *Collection[T] {
	return &Collection[T]{backend: backend, name: name}
}

// Name returns the underlying store name.
func (c *Collection[T]) Name() Name {
	return c.name
}

// Load reads and decodes every record.
func (c *Collection[T]) Load(ctx context.Context) (map[string]T, error) {
	raw, err := c.backend.Read(ctx, c.name)
	if err != nil {
		return nil, err
	}

	records := make(map[string]T, len(raw))
	for id, data := range raw {
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %q: %w", c.name, id, err)
		}
		records[id] = rec
	}
	return records, nil
}

// Save encodes and writes every record, replacing the stored mapping.
func (c *Collection[T]) Save(ctx context.Context, records map[string]T) error {
	raw := make(map[string]json.RawMessage, len(records))
	for id, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode %s record %q: %w", c.name, id, err)
		}
		raw[id] = data
	}
	return c.backend.Write(ctx, c.name, raw)
}

// Update loads the mapping, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (c *Collection[T]) Update(ctx context.Context, fn func(records map[string]T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(records); err != nil {
		return err
	}
	return c.Save(ctx, records)
}

// Reset initialises every store and empties it.
func Reset(ctx context.Context, backend Backend, logger zerolog.Logger) error {
	if err := Bootstrap(ctx, backend, logger); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range All {
		g.Go(func() error {
			if err := backend.Write(ctx, name, map[string]json.RawMessage{}); err != nil {
				return fmt.Errorf("failed to reset store %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().Int("stores", len(All)).Msg("stores reset")
	return nil
}
