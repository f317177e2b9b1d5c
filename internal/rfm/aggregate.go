// Package rfm implements the core segmentation pipeline: per-customer
// Recency/Frequency/Monetary aggregation, quintile scoring, rule-based segment
// classification, and the lifetime-value estimate.
package rfm

import (
	"context"
	"log/slog"
	"time"

	"github.com/rfmscope/rfmscope/internal/model"
)

// Aggregate reduces cleaned transactions to one CustomerRFM row per distinct
// customer. The analysis date is the latest invoice date in the whole cohort
// plus one day, so Recency is comparable across every customer in the run.
// Rows are returned in first-appearance order; that order is also the stable
// tie-break used by rank-based scoring.
func Aggregate(_ context.Context, txns []model.CleanTransaction) ([]model.CustomerRFM, time.Time) {
	if len(txns) == 0 {
		return nil, time.Time{}
	}

	analysisDate := analysisDateOf(txns)

	type accum struct {
		latest   time.Time
		invoices map[string]bool
		index    int
	}

	byCustomer := make(map[string]*accum)
	customers := make([]model.CustomerRFM, 0)

	for _, txn := range txns {
		acc, ok := byCustomer[txn.CustomerID]
		if !ok {
			acc = &accum{
				invoices: make(map[string]bool),
				index:    len(customers),
			}
			byCustomer[txn.CustomerID] = acc
			customers = append(customers, model.CustomerRFM{CustomerID: txn.CustomerID})
		}

		if txn.InvoiceDate.After(acc.latest) {
			acc.latest = txn.InvoiceDate
		}
		acc.invoices[txn.InvoiceID] = true

		row := &customers[acc.index]
		row.Monetary = row.Monetary.Add(txn.TotalPrice)
	}

	for _, acc := range byCustomer {
		row := &customers[acc.index]
		row.Recency = wholeDays(analysisDate.Sub(acc.latest))
		row.Frequency = len(acc.invoices)
	}

	slog.Debug("Aggregated customers",
		"transactions", len(txns),
		"customers", len(customers),
		"analysis_date", analysisDate.Format("2006-01-02"))

	return customers, analysisDate
}

// analysisDateOf returns the cohort reference date: latest invoice plus one day.
func analysisDateOf(txns []model.CleanTransaction) time.Time {
	var latest time.Time
	for _, txn := range txns {
		if txn.InvoiceDate.After(latest) {
			latest = txn.InvoiceDate
		}
	}
	return latest.AddDate(0, 0, 1)
}

// wholeDays truncates a duration to whole days, matching calendar-day
// recency arithmetic for the non-negative spans cleaning guarantees.
func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
