package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"order-app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresBackend keeps each store as one JSONB row in record_stores.
// The table is created by database.Migrate.
type PostgresBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresBackend creates a backend over an open pool.
func NewPostgresBackend(pool *pgxpool.Pool, logger zerolog.Logger) *PostgresBackend {
	return &PostgresBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "postgres").Logger(),
	}
}

// Init inserts an empty row for the store unless one exists.
func (b *PostgresBackend) Init(ctx context.Context, name Name) error {
	query := `
		INSERT INTO record_stores (name, records)
		VALUES ($1, '{}'::jsonb)
		ON CONFLICT (name) DO NOTHING
	`

	tag, err := b.pool.Exec(ctx, query, string(name))
	if err != nil {
		return fmt.Errorf("failed to initialise store %s: %w", name, err)
	}
	if tag.RowsAffected() > 0 {
		b.logger.Info().Str("store", string(name)).Msg("created empty store row")
	}
	return nil
}

// Read loads the whole store document.
func (b *PostgresBackend) Read(ctx context.Context, name Name) (map[string]json.RawMessage, error) {
	query := `SELECT records FROM record_stores WHERE name = $1`

	var data []byte
	err := b.pool.QueryRow(ctx, query, string(name)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// Write replaces the store document.
func (b *PostgresBackend) Write(ctx context.Context, name Name, records map[string]json.RawMessage) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode store %s: %w", name, err)
	}

	query := `
		UPDATE record_stores
		SET records = $2::jsonb, updated_at = CURRENT_TIMESTAMP
		WHERE name = $1
	`

	tag, err := b.pool.Exec(ctx, query, string(name), string(data))
	if err != nil {
		return fmt.Errorf("failed to write store %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store %s: %w", name, model.ErrUninitializedStore)
	}

	b.logger.Debug().Str("store", string(name)).Int("records", len(records)).Msg("store written")
	return nil
}
