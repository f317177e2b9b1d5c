package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegment(t *testing.T) {
	for _, seg := range AllSegments() {
		got, err := ParseSegment(string(seg))
		require.NoError(t, err)
		assert.Equal(t, seg, got)
	}

	_, err := ParseSegment("VIP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIP")
}

func TestSegment_Valid(t *testing.T) {
	assert.True(t, SegmentAtRisk.Valid())
	assert.False(t, Segment("").Valid())
	assert.False(t, Segment("champion").Valid(), "labels are case sensitive")
}

func TestTransaction_Hash(t *testing.T) {
	a := Transaction{InvoiceID: "1", CustomerID: "A", InvoiceDate: "2011-01-01", Quantity: 2}
	b := a
	assert.Equal(t, a.Hash(), b.Hash())

	b.Quantity = 3
	assert.NotEqual(t, a.Hash(), b.Hash())
}
