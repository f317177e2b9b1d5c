// Package ingest reads transaction workbooks into raw transaction rows.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/rfmscope/rfmscope/internal/common"
	"github.com/rfmscope/rfmscope/internal/model"
)

// requiredColumns are the header names a workbook must carry, matched
// case-insensitively against the first row of the first sheet.
var requiredColumns = []string{"Customer ID", "Invoice", "InvoiceDate", "Quantity", "Price"}

// Reader parses spreadsheet workbooks into raw transactions.
type Reader struct {
	progress io.Writer
}

// NewReader creates a workbook reader that reports row progress to stderr.
func NewReader() *Reader {
	return &Reader{progress: os.Stderr}
}

// NewQuietReader creates a workbook reader without progress output.
func NewQuietReader() *Reader {
	return &Reader{}
}

// ReadFile opens the workbook at path and returns its transaction rows.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &common.FormatError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	return r.Read(ctx, f, path)
}

// Read parses a workbook stream. The path is used for error reporting only.
func (r *Reader) Read(ctx context.Context, reader io.Reader, path string) ([]model.Transaction, error) {
	wb, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, &common.FormatError{Path: path, Err: fmt.Errorf("not a readable workbook: %w", err)}
	}
	defer func() {
		_ = wb.Close()
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &common.FormatError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, &common.FormatError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &common.FormatError{Path: path, Err: fmt.Errorf("sheet %s is empty", sheets[0])}
	}

	columns, err := mapColumns(rows[0], path)
	if err != nil {
		return nil, err
	}

	bar := r.newBar(len(rows) - 1)

	txns := make([]model.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if blank(row) {
			continue
		}

		txn, err := parseRow(row, columns, i+2)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	slog.Info("Parsed workbook",
		"path", path,
		"sheet", sheets[0],
		"rows", len(txns))

	return txns, nil
}

func (r *Reader) newBar(total int) *progressbar.ProgressBar {
	if r.progress == nil || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Reading transactions..."),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(0),
	)
}

// mapColumns resolves required header names to column indexes.
func mapColumns(header []string, path string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	columns := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, name := range requiredColumns {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[name] = i
	}
	if len(missing) > 0 {
		return nil, &common.FormatError{Path: path, Missing: missing}
	}
	return columns, nil
}

// parseRow converts one sheet row into a raw transaction. rowNum is 1-based
// including the header, matching what the user sees in a spreadsheet app.
func parseRow(row []string, columns map[string]int, rowNum int) (model.Transaction, error) {
	quantityRaw := cell(row, columns["Quantity"])
	quantityFloat, err := cast.ToFloat64E(quantityRaw)
	if err != nil && quantityRaw != "" {
		return model.Transaction{}, &common.DataFormatError{Row: rowNum, Column: "Quantity", Value: quantityRaw}
	}

	priceRaw := cell(row, columns["Price"])
	price := decimal.Zero
	if priceRaw != "" {
		price, err = decimal.NewFromString(priceRaw)
		if err != nil {
			return model.Transaction{}, &common.DataFormatError{Row: rowNum, Column: "Price", Value: priceRaw}
		}
	}

	return model.Transaction{
		InvoiceID:   cell(row, columns["Invoice"]),
		CustomerID:  cell(row, columns["Customer ID"]),
		InvoiceDate: cell(row, columns["InvoiceDate"]),
		Quantity:    int64(quantityFloat),
		Price:       price,
	}, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
