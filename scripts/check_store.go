//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"order-app/internal/config"
	"order-app/internal/database"
)

// checkStore connects to the configured PostgreSQL database and prints how
// many records each store holds.
//
//	go run scripts/check_store.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, config.NewLogger(cfg.Logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	rows, err := pool.Query(ctx, "SELECT name, (SELECT count(*) FROM jsonb_object_keys(records)), updated_at FROM record_stores ORDER BY name")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stores are not initialised (run `orderapp init`): %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		var updated time.Time
		if err := rows.Scan(&name, &count, &updated); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-10s %6d records (updated %s)\n", name, count, updated.Format(time.RFC3339))
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
}
