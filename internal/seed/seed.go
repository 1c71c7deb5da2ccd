// Package seed loads the initial catalog from tabular item files.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"order-app/internal/model"

	"github.com/klauspost/pgzip"
)

// Header columns of a seed file. Column order is free.
const (
	ColumnName     = "item_name"
	ColumnPrice    = "price"
	ColumnQuantity = "quantity"
)

// Loader defines the interface for loading seed files.
type Loader interface {
	// Load reads the seed file at path and returns the items it lists.
	// Paths ending in .gz are decompressed.
	Load(ctx context.Context, path string) ([]model.Item, error)
}

// Parse reads CSV seed data from r. compressed selects gzip decoding.
func Parse(ctx context.Context, r io.Reader, compressed bool) ([]model.Item, error) {
	if compressed {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("seed file is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := columns(header)
	if err != nil {
		return nil, err
	}

	var items []model.Item
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		item, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// IsCompressed reports whether path names a gzipped seed file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

type columnIndex struct {
	name, price, quantity int
}

func columns(header []string) (columnIndex, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var cols columnIndex
	var ok bool
	if cols.name, ok = idx[ColumnName]; !ok {
		return cols, fmt.Errorf("missing %q column", ColumnName)
	}
	if cols.price, ok = idx[ColumnPrice]; !ok {
		return cols, fmt.Errorf("missing %q column", ColumnPrice)
	}
	if cols.quantity, ok = idx[ColumnQuantity]; !ok {
		return cols, fmt.Errorf("missing %q column", ColumnQuantity)
	}
	return cols, nil
}

func parseRecord(record []string, cols columnIndex) (model.Item, error) {
	name := strings.TrimSpace(record[cols.name])
	if name == "" {
		return model.Item{}, fmt.Errorf("empty item name: %w", model.ErrInvalidInput)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[cols.price]), 64)
	if err != nil || price < 0 {
		return model.Item{}, fmt.Errorf("%s: %w", name, model.ErrInvalidPrice)
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[cols.quantity]))
	if err != nil || stock < 0 {
		return model.Item{}, fmt.Errorf("%s: %w", name, model.ErrInvalidStock)
	}

	return model.Item{Name: name, Price: price, Stock: stock}, nil
}
