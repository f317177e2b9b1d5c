package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single raw invoice line as read from the workbook.
// InvoiceDate is kept as the raw cell text; the cleaner parses it.
type Transaction struct {
	InvoiceID   string
	CustomerID  string // empty means missing
	InvoiceDate string
	Quantity    int64
	Price       decimal.Decimal
}

// Hash creates a unique hash over all fields for exact-duplicate detection.
func (t *Transaction) Hash() string {
	data := fmt.Sprintf("%s:%s:%s:%d:%s",
		t.InvoiceID,
		t.CustomerID,
		t.InvoiceDate,
		t.Quantity,
		t.Price.String())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// CleanTransaction is a transaction that survived cleaning: customer present,
// positive quantity and price, parsed date, and the derived line total.
type CleanTransaction struct {
	InvoiceDate time.Time
	InvoiceID   string
	CustomerID  string
	Quantity    int64
	Price       decimal.Decimal
	TotalPrice  decimal.Decimal
}
