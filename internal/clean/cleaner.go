// Package clean validates and normalizes raw transaction rows ahead of
// aggregation: exact duplicates, anonymous rows, and returns are dropped,
// invoice dates are parsed, and the per-line total is attached.
package clean

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rfmscope/rfmscope/internal/common"
	"github.com/rfmscope/rfmscope/internal/model"
)

// dateLayouts are tried in order when parsing invoice dates. Workbooks exported
// from different locales disagree on date rendering, so the list is permissive.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"01-02-2006 15:04",
	"02.01.2006 15:04",
}

// excelEpoch is the zero date of Excel's 1900 serial date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Cleaner filters and normalizes raw transactions.
type Cleaner struct{}

// NewCleaner creates a new transaction cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean returns a new slice of transactions satisfying the post-clean
// invariants: no exact duplicates, customer present, quantity and price
// positive, parsed invoice date, TotalPrice = Quantity * Price. The input is
// never mutated. A result with zero rows is valid; date parse failures are not.
func (c *Cleaner) Clean(ctx context.Context, txns []model.Transaction) ([]model.CleanTransaction, error) {
	seen := make(map[string]bool, len(txns))
	cleaned := make([]model.CleanTransaction, 0, len(txns))

	var duplicates, anonymous, nonPositive int

	for i, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hash := txn.Hash()
		if seen[hash] {
			duplicates++
			continue
		}
		seen[hash] = true

		if strings.TrimSpace(txn.CustomerID) == "" {
			anonymous++
			continue
		}

		// Returns, cancellations, and zero-value lines carry no RFM signal.
		if txn.Quantity <= 0 || !txn.Price.IsPositive() {
			nonPositive++
			continue
		}

		date, err := ParseInvoiceDate(txn.InvoiceDate)
		if err != nil {
			return nil, &common.DataFormatError{
				Row:    i + 1,
				Column: "InvoiceDate",
				Value:  txn.InvoiceDate,
			}
		}

		cleaned = append(cleaned, model.CleanTransaction{
			InvoiceID:   txn.InvoiceID,
			CustomerID:  strings.TrimSpace(txn.CustomerID),
			InvoiceDate: date,
			Quantity:    txn.Quantity,
			Price:       txn.Price,
			TotalPrice:  txn.Price.Mul(decimal.NewFromInt(txn.Quantity)),
		})
	}

	slog.Debug("Cleaned transactions",
		"input_rows", len(txns),
		"output_rows", len(cleaned),
		"duplicates", duplicates,
		"missing_customer", anonymous,
		"non_positive", nonPositive)

	return cleaned, nil
}

// ParseInvoiceDate parses a raw invoice date cell. It accepts the common
// textual layouts plus Excel serial numbers.
func ParseInvoiceDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	// Unformatted date cells surface as serial numbers (days since the Excel
	// epoch, fractional part is time of day).
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		days := int(serial)
		frac := serial - float64(days)
		return excelEpoch.AddDate(0, 0, days).
			Add(time.Duration(frac * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date value %q", raw)
}
