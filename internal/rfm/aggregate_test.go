package rfm

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfmscope/rfmscope/internal/model"
)

func cleanTxn(invoice, customer string, date time.Time, total string) model.CleanTransaction {
	return model.CleanTransaction{
		InvoiceID:   invoice,
		CustomerID:  customer,
		InvoiceDate: date,
		Quantity:    1,
		Price:       decimal.RequireFromString(total),
		TotalPrice:  decimal.RequireFromString(total),
	}
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	day := func(d int) time.Time {
		return time.Date(2011, 12, d, 10, 0, 0, 0, time.UTC)
	}

	txns := []model.CleanTransaction{
		cleanTxn("I1", "A", day(1), "10.00"),
		cleanTxn("I1", "A", day(1), "5.00"), // second line of the same invoice
		cleanTxn("I2", "A", day(5), "20.00"),
		cleanTxn("I3", "B", day(9), "7.50"),
	}

	customers, analysisDate := Aggregate(ctx, txns)

	// Analysis date is the cohort's latest invoice plus one day.
	assert.True(t, day(9).AddDate(0, 0, 1).Equal(analysisDate))

	require.Len(t, customers, 2)
	byID := make(map[string]model.CustomerRFM)
	for _, c := range customers {
		byID[c.CustomerID] = c
	}

	a := byID["A"]
	assert.Equal(t, 2, a.Frequency, "invoice I1 counted once despite two lines")
	assert.True(t, decimal.RequireFromString("35.00").Equal(a.Monetary))
	assert.Equal(t, 5, a.Recency, "days from analysis date to latest invoice")

	b := byID["B"]
	assert.Equal(t, 1, b.Frequency)
	assert.True(t, decimal.RequireFromString("7.50").Equal(b.Monetary))
	assert.Equal(t, 1, b.Recency)
}

func TestAggregate_Partition(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)

	var txns []model.CleanTransaction
	invoices := map[string]bool{}
	customers := []string{"A", "B", "C", "A", "B", "A"}
	for i, cust := range customers {
		invoice := string(rune('0'+i)) + "-inv"
		invoices[invoice] = true
		txns = append(txns, cleanTxn(invoice, cust, base.AddDate(0, 0, i), "1.00"))
	}

	got, _ := Aggregate(ctx, txns)

	require.Len(t, got, 3, "one row per distinct customer")

	totalFrequency := 0
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Frequency, 1)
		assert.GreaterOrEqual(t, c.Recency, 0)
		assert.True(t, c.Monetary.IsPositive())
		totalFrequency += c.Frequency
	}
	assert.Equal(t, len(invoices), totalFrequency,
		"per-customer distinct invoice counts partition the invoice set")
}

func TestAggregate_Empty(t *testing.T) {
	customers, analysisDate := Aggregate(context.Background(), nil)
	assert.Empty(t, customers)
	assert.True(t, analysisDate.IsZero())
}
