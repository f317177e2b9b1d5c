package model

import "github.com/shopspring/decimal"

// CustomerRFM is one customer's aggregated purchase behavior plus the derived
// scores, segment, and lifetime-value estimate. One row per distinct customer
// per run; a new run replaces the whole table.
type CustomerRFM struct {
	Monetary   decimal.Decimal
	CLTV       decimal.Decimal
	CustomerID string
	Segment    Segment
	Recency    int // days since latest invoice, measured from the analysis date
	Frequency  int // count of distinct invoices
	RScore     int
	FScore     int
	MScore     int
	RFMScore   int // 100*R + 10*F + M
}
