package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"order-app/internal/model"

	"github.com/rs/zerolog"
)

// FileBackend keeps each store in its own JSON file under dir.
type FileBackend struct {
	dir    string
	logger zerolog.Logger
}

// NewFileBackend creates a file-backed store rooted at dir.
func NewFileBackend(dir string, logger zerolog.Logger) *FileBackend {
	return &FileBackend{
		dir:    dir,
		logger: logger.With().Str("backend", "file").Str("dir", dir).Logger(),
	}
}

// Path returns the file that holds the named store.
func (b *FileBackend) Path(name Name) string {
	return filepath.Join(b.dir, string(name)+".json")
}

// Init creates the store file with an empty mapping unless it already exists.
func (b *FileBackend) Init(_ context.Context, name Name) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(b.Path(name)); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat store %s: %w", name, err)
	}

	b.logger.Info().Str("store", string(name)).Msg("creating empty store file")
	return b.replace(name, map[string]json.RawMessage{})
}

// Read loads the whole store file.
func (b *FileBackend) Read(_ context.Context, name Name) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(b.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.logger.Error().Str("store", string(name)).Msg("store file missing")
			return nil, fmt.Errorf("store %s: %w", name, model.ErrUninitializedStore)
		}
		return nil, fmt.Errorf("failed to read store %s: %w", name, err)
	}

	records := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse store %s: %w", name, err)
	}
	return records, nil
}

// Write replaces the store file. The file must have been created by Init.
func (b *FileBackend) Write(_ context.Context, name Name, records map[string]json.RawMessage) error {
	if _, err := os.Stat(b.Path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store %s: %w", name, model.ErrUninitializedStore)
		}
		return fmt.Errorf("failed to stat store %s: %w", name, err)
	}
	return b.replace(name, records)
}

// replace writes to a temporary file and renames it over the store so a
// crash mid-write never leaves a truncated store behind.
func (b *FileBackend) replace(name Name, records map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode store %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+string(name)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for store %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write store %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), b.Path(name)); err != nil {
		return fmt.Errorf("failed to replace store %s: %w", name, err)
	}

	b.logger.Debug().Str("store", string(name)).Int("records", len(records)).Msg("store written")
	return nil
}
