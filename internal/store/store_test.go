package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"order-app/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	return map[string]Backend{
		"file":   NewFileBackend(filepath.Join(t.TempDir(), "files"), zerolog.Nop()),
		"memory": NewMemoryBackend(),
	}
}

func TestBackend_UninitializedStore(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Read(ctx, Items)
			assert.ErrorIs(t, err, model.ErrUninitializedStore)

			err = b.Write(ctx, Items, map[string]json.RawMessage{})
			assert.ErrorIs(t, err, model.ErrUninitializedStore)
		})
	}
}

func TestBackend_InitIsIdempotent(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Init(ctx, Items))
			require.NoError(t, b.Write(ctx, Items, map[string]json.RawMessage{"1": json.RawMessage(`{"name":"a"}`)}))

			// A second Init must not wipe existing records.
			require.NoError(t, b.Init(ctx, Items))

			records, err := b.Read(ctx, Items)
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestCollection_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Init(ctx, Items))
			c := NewCollection[record](b, Items)

			empty, err := c.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			want := map[string]record{
				"1": {Name: "apple", Count: 3},
				"2": {Name: "pear", Count: 0},
			}
			require.NoError(t, c.Save(ctx, want))

			got, err := c.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCollection_LoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Init(ctx, Items))
	c := NewCollection[record](b, Items)
	require.NoError(t, c.Save(ctx, map[string]record{"1": {Name: "apple"}}))

	first, err := c.Load(ctx)
	require.NoError(t, err)
	first["1"] = record{Name: "changed"}

	second, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "apple", second["1"].Name)
}

func TestCollection_UpdateSkipsWriteOnError(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Init(ctx, Items))
	c := NewCollection[record](b, Items)
	require.NoError(t, c.Save(ctx, map[string]record{"1": {Name: "apple", Count: 1}}))

	err := c.Update(ctx, func(records map[string]record) error {
		records["1"] = record{Name: "apple", Count: 99}
		return model.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, model.ErrInsufficientStock)

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got["1"].Count)
}

func TestCollection_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Init(ctx, Items))
	c := NewCollection[record](b, Items)
	require.NoError(t, c.Save(ctx, map[string]record{"1": {Name: "apple"}}))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Update(ctx, func(records map[string]record) error {
				r := records["1"]
				r.Count++
				records["1"] = r
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, got["1"].Count)
}

func TestFileBackend_Layout(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "files")
	b := NewFileBackend(dir, zerolog.Nop())

	require.NoError(t, Bootstrap(ctx, b, zerolog.Nop()))

	for _, name := range All {
		data, err := os.ReadFile(filepath.Join(dir, string(name)+".json"))
		require.NoError(t, err, "store %s", name)
		assert.JSONEq(t, `{}`, string(data))
	}

	c := NewCollection[record](b, Users)
	require.NoError(t, c.Save(ctx, map[string]record{"7": {Name: "bob"}}))

	data, err := os.ReadFile(b.Path(Users))
	require.NoError(t, err)
	assert.JSONEq(t, `{"7": {"name": "bob", "count": 0}}`, string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(All))
}

func TestFileBackend_CorruptStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(dir, zerolog.Nop())
	require.NoError(t, os.WriteFile(b.Path(Orders), []byte("not json"), 0o644))

	_, err := b.Read(ctx, Orders)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse store orders")
}

func TestSequence_Next(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, Bootstrap(ctx, b, zerolog.Nop()))
	seq := NewSequence(b)

	id, err := seq.Next(ctx, "orders", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id, err = seq.Next(ctx, "orders", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	// Keys are independent.
	id, err = seq.Next(ctx, "users", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	// A floor above the counter wins.
	id, err = seq.Next(ctx, "orders", 10)
	require.NoError(t, err)
	assert.Equal(t, 11, id)

	// A floor below the counter is ignored, so ids never repeat.
	id, err = seq.Next(ctx, "orders", 3)
	require.NoError(t, err)
	assert.Equal(t, 12, id)
}

func TestSequence_ConcurrentIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, Bootstrap(ctx, b, zerolog.Nop()))
	seq := NewSequence(b)

	var (
		mu  sync.Mutex
		ids = map[int]bool{}
		wg  sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := seq.Next(ctx, "orders", 0)
			assert.NoError(t, err)
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 20)
	for i := 1; i <= 20; i++ {
		assert.True(t, ids[i], "missing id "+strconv.Itoa(i))
	}
}

func TestBootstrap_UninitializedBeforehand(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	_, err := NewSequence(b).Next(ctx, "orders", 0)
	assert.ErrorIs(t, err, model.ErrUninitializedStore)

	require.NoError(t, Bootstrap(ctx, b, zerolog.Nop()))

	_, err = NewSequence(b).Next(ctx, "orders", 0)
	assert.NoError(t, err)
}

func TestReset(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Bootstrap(ctx, b, zerolog.Nop()))
			require.NoError(t, b.Write(ctx, Orders, map[string]json.RawMessage{"1": json.RawMessage(`{}`)}))
			_, err := NewSequence(b).Next(ctx, "orders", 0)
			require.NoError(t, err)

			require.NoError(t, Reset(ctx, b, zerolog.Nop()))

			for _, store := range All {
				records, err := b.Read(ctx, store)
				require.NoError(t, err)
				assert.Empty(t, records, "store %s", store)
			}
		})
	}
}
