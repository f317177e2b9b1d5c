package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfmscope/rfmscope/internal/model"
)

func rawTxn(invoice, customer, date string, qty int64, price string) model.Transaction {
	return model.Transaction{
		InvoiceID:   invoice,
		CustomerID:  customer,
		InvoiceDate: date,
		Quantity:    qty,
		Price:       decimal.RequireFromString(price),
	}
}

// retailCohort builds a ten-customer population where CHAMP sits in the top
// quintile of all three metrics: three invoices totaling 500, all within ten
// days of the analysis date (latest invoice 2011-12-09, so analysis date
// 2011-12-10).
func retailCohort() []model.Transaction {
	txns := []model.Transaction{
		rawTxn("I101", "CHAMP", "2011-12-05", 10, "20.00"),
		rawTxn("I102", "CHAMP", "2011-12-07", 10, "15.00"),
		rawTxn("I103", "CHAMP", "2011-12-09", 10, "15.00"),
	}

	dates := []string{
		"2011-11-30", "2011-11-10", "2011-10-11", "2011-09-11", "2011-08-12",
		"2011-07-13", "2011-06-13", "2011-05-14", "2011-04-14",
	}
	for i, date := range dates {
		txns = append(txns, rawTxn(
			fmt.Sprintf("I2%02d", i+1),
			fmt.Sprintf("C%02d", i+1),
			date,
			1,
			fmt.Sprintf("%d.00", 20+i*10),
		))
	}
	return txns
}

func TestEngine_Run_ChampionScenario(t *testing.T) {
	ctx := context.Background()

	result, err := New(Config{}).Run(ctx, retailCohort())
	require.NoError(t, err)
	require.Len(t, result.Customers, 10)

	assert.True(t, result.AnalysisDate.Equal(time.Date(2011, 12, 10, 0, 0, 0, 0, time.UTC)))

	byID := make(map[string]model.CustomerRFM)
	for _, c := range result.Customers {
		byID[c.CustomerID] = c
	}

	champ := byID["CHAMP"]
	assert.Equal(t, 1, champ.Recency)
	assert.Equal(t, 3, champ.Frequency)
	assert.True(t, decimal.NewFromInt(500).Equal(champ.Monetary))
	assert.Equal(t, 5, champ.RScore)
	assert.Equal(t, 5, champ.FScore)
	assert.Equal(t, 5, champ.MScore)
	assert.Equal(t, 555, champ.RFMScore)
	assert.Equal(t, model.SegmentChampion, champ.Segment)
	assert.True(t, decimal.NewFromInt(1500).Equal(champ.CLTV), "CLTV = Monetary * Frequency")

	// The least recent big spender scores F5/M5 but R1: loyal, not champion.
	assert.Equal(t, model.SegmentLoyal, byID["C09"].Segment)
	// Recent one-off small spender matches no positive rule.
	assert.Equal(t, model.SegmentHibernating, byID["C01"].Segment)

	for _, c := range result.Customers {
		wantCLTV := c.Monetary.Mul(decimal.NewFromInt(int64(c.Frequency)))
		assert.True(t, wantCLTV.Equal(c.CLTV), "%s CLTV", c.CustomerID)
		assert.True(t, c.Segment.Valid())
	}
}

func TestEngine_Run_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng := New(Config{})

	first, err := eng.Run(ctx, retailCohort())
	require.NoError(t, err)
	second, err := eng.Run(ctx, retailCohort())
	require.NoError(t, err)

	require.Equal(t, len(first.Customers), len(second.Customers))
	for i := range first.Customers {
		assert.Equal(t, first.Customers[i], second.Customers[i])
	}
	assert.True(t, first.AnalysisDate.Equal(second.AnalysisDate))
}

func TestEngine_Run_AllRowsFiltered(t *testing.T) {
	ctx := context.Background()

	// Only returns and anonymous rows: cleaning leaves nothing, which is a
	// valid empty result rather than a failure.
	txns := []model.Transaction{
		rawTxn("C001", "A", "2011-12-01", -3, "10.00"),
		rawTxn("I002", "", "2011-12-02", 2, "5.00"),
	}

	result, err := New(Config{}).Run(ctx, txns)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.NotEmpty(t, result.RunID)
}

func TestEngine_Run_BadDateAborts(t *testing.T) {
	txns := []model.Transaction{
		rawTxn("I001", "A", "yesterday-ish", 1, "10.00"),
	}

	result, err := New(Config{}).Run(context.Background(), txns)
	require.Error(t, err)
	assert.Nil(t, result, "no partial output on failure")
}

func TestResult_FilterSegments(t *testing.T) {
	result, err := New(Config{}).Run(context.Background(), retailCohort())
	require.NoError(t, err)

	champions := result.FilterSegments([]model.Segment{model.SegmentChampion})
	require.Len(t, champions, 1)
	assert.Equal(t, "CHAMP", champions[0].CustomerID)

	everyone := result.FilterSegments(nil)
	assert.Len(t, everyone, len(result.Customers))

	none := result.FilterSegments([]model.Segment{"Champion"})
	assert.Len(t, none, 1, "string-typed segment values compare equal")
}
