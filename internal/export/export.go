// Package export renders order projections to spreadsheet files.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"order-app/internal/model"
	"order-app/internal/service"

	"github.com/rs/zerolog"
	"github.com/tealeg/xlsx"
)

// SheetName is the name of the single sheet in an order export.
const SheetName = "my_order"

var header = []string{"Item ID", "Item Name", "Price", "Quantity", "Total"}

// Writer persists an order export.
type Writer interface {
	// Write stores the export and returns the path of the created file.
	Write(ctx context.Context, export *service.OrderExport) (string, error)
}

// XLSXWriter writes order exports as Excel workbooks into a directory.
type XLSXWriter struct {
	dir    string
	logger zerolog.Logger
}

// NewXLSXWriter creates a writer that places files in dir.
func NewXLSXWriter(dir string, logger zerolog.Logger) *XLSXWriter {
	return &XLSXWriter{
		dir:    dir,
		logger: logger.With().Str("component", "xlsx-export").Logger(),
	}
}

// Path returns the file an export of orderID is written to.
func (w *XLSXWriter) Path(orderID int) string {
	return filepath.Join(w.dir, fmt.Sprintf("my_order_%d.xlsx", orderID))
}

// Write renders export to my_order_<id>.xlsx. An order is exported at most
// once; a second export fails with model.ErrDuplicateExport.
func (w *XLSXWriter) Write(ctx context.Context, export *service.OrderExport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := w.Path(export.OrderID)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s: %w", path, model.ErrDuplicateExport)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to check export file: %w", err)
	}

	file, err := build(export)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := file.Save(path); err != nil {
		w.logger.Error().Err(err).Str("file", path).Msg("failed to save export")
		return "", fmt.Errorf("failed to save export: %w", err)
	}

	w.logger.Info().Int("order_id", export.OrderID).Str("file", path).Msg("order exported")
	return path, nil
}

func build(export *service.OrderExport) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	addRow(sheet, toValues(header)...)
	for _, line := range export.Rows {
		addRow(sheet, line.ItemID, line.Name, line.Price, line.Quantity, line.Amount)
	}

	sum := fmt.Sprintf("%.2f", export.Sum)
	sheet.AddRow()
	switch export.Discount {
	case model.DiscountCoupon:
		addRow(sheet, "Applied: ", fmt.Sprintf("Coupon discount (%d%%)", export.Percent), "", "Sum", sum)
	case model.DiscountWholesale:
		addRow(sheet, "Applied: ", fmt.Sprintf("Wholesale discount (%d%%)", export.Percent), "", "Sum", sum)
	default:
		addRow(sheet, "", "", "", "Sum", sum)
	}

	used := "No"
	if export.CouponUsed {
		used = "YES"
	}
	sheet.AddRow()
	addRow(sheet, "Used coupon: ", used, "", "", "")
	addRow(sheet, "Date", export.GeneratedAt.Format("02/01/2006"), "", "", "")
	addRow(sheet, "Time", export.GeneratedAt.Format("15:04:05"), "", "", "")

	return file, nil
}

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

func toValues(s []string) []interface{} {
	values := make([]interface{}, len(s))
	for i, v := range s {
		values[i] = v
	}
	return values
}
