package seed

import (
	"context"
	"fmt"

	"order-app/internal/service"

	"github.com/rs/zerolog"
)

// Seeder fills an empty catalog from a seed file.
type Seeder struct {
	catalog service.CatalogService
	loader  Loader
	logger  zerolog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(catalog service.CatalogService, loader Loader, logger zerolog.Logger) *Seeder {
	return &Seeder{
		catalog: catalog,
		loader:  loader,
		logger:  logger.With().Str("component", "seeder").Logger(),
	}
}

// Seed imports path into the catalog unless it already has items. It
// returns the number of imported items.
func (s *Seeder) Seed(ctx context.Context, path string) (int, error) {
	existing, err := s.catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Info().Int("items", len(existing)).Msg("catalog already populated, skipping seed")
		return 0, nil
	}

	items, err := s.loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	n, err := s.catalog.Import(ctx, items)
	if err != nil {
		return n, fmt.Errorf("failed to seed catalog: %w", err)
	}
	return n, nil
}
