package seed

import (
	"context"
	"fmt"
	"os"

	"order-app/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for seed files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a local seed file.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Item, error) {
	l.logger.Info().Str("file", path).Msg("loading seed file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer file.Close()

	items, err := Parse(ctx, file, IsCompressed(path))
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse seed file")
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("items_loaded", len(items)).
		Msg("seed file loaded successfully")

	return items, nil
}
