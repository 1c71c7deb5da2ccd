package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds one row per record store. The whole mapping lives in a
// single JSONB document so reads and writes stay whole-store.
const Schema = `
	CREATE TABLE IF NOT EXISTS record_stores (
		name       VARCHAR(64) PRIMARY KEY,
		records    JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
