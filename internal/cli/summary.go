package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rfmscope/rfmscope/internal/model"
)

// Summary holds the display aggregates computed over a (possibly filtered)
// customer table.
type Summary struct {
	AvgCLTV        decimal.Decimal
	SegmentRows    []SegmentRow
	Top            []model.CustomerRFM
	AvgRecency     float64
	AvgFrequency   float64
	TotalCustomers int
}

// SegmentRow is the per-segment averages line of the summary table.
type SegmentRow struct {
	AvgMonetary  decimal.Decimal
	Segment      model.Segment
	AvgRecency   float64
	AvgFrequency float64
	Count        int
}

// Summarize computes KPI metrics, per-segment averages, and the top customers
// by CLTV over the given table.
func Summarize(customers []model.CustomerRFM, topN int) Summary {
	s := Summary{TotalCustomers: len(customers)}
	if len(customers) == 0 {
		return s
	}

	type segAccum struct {
		monetary  decimal.Decimal
		cltv      decimal.Decimal
		recency   int
		frequency int
		count     int
	}
	bySegment := make(map[model.Segment]*segAccum)

	var recencySum, frequencySum int
	cltvSum := decimal.Zero
	for _, c := range customers {
		recencySum += c.Recency
		frequencySum += c.Frequency
		cltvSum = cltvSum.Add(c.CLTV)

		acc, ok := bySegment[c.Segment]
		if !ok {
			acc = &segAccum{}
			bySegment[c.Segment] = acc
		}
		acc.recency += c.Recency
		acc.frequency += c.Frequency
		acc.monetary = acc.monetary.Add(c.Monetary)
		acc.count++
	}

	n := int64(len(customers))
	s.AvgRecency = float64(recencySum) / float64(n)
	s.AvgFrequency = float64(frequencySum) / float64(n)
	s.AvgCLTV = cltvSum.Div(decimal.NewFromInt(n)).Round(2)

	for _, seg := range model.AllSegments() {
		acc, ok := bySegment[seg]
		if !ok {
			continue
		}
		s.SegmentRows = append(s.SegmentRows, SegmentRow{
			Segment:      seg,
			Count:        acc.count,
			AvgRecency:   float64(acc.recency) / float64(acc.count),
			AvgFrequency: float64(acc.frequency) / float64(acc.count),
			AvgMonetary:  acc.monetary.Div(decimal.NewFromInt(int64(acc.count))).Round(2),
		})
	}

	top := make([]model.CustomerRFM, len(customers))
	copy(top, customers)
	sort.SliceStable(top, func(a, b int) bool {
		return top[a].CLTV.GreaterThan(top[b].CLTV)
	})
	if topN > 0 && topN < len(top) {
		top = top[:topN]
	}
	s.Top = top

	return s
}

// Render writes the styled summary to w.
func Render(w io.Writer, s Summary) {
	fmt.Fprintln(w, TitleStyle.Render(ChartIcon+" Customer Segmentation Summary"))

	if s.TotalCustomers == 0 {
		fmt.Fprintln(w, FormatWarning("No customers after cleaning; nothing to report"))
		return
	}

	renderMetrics(w, s)
	renderSegmentTable(w, s.SegmentRows)
	renderTopCustomers(w, s.Top)
}

func renderMetrics(w io.Writer, s Summary) {
	metrics := []struct {
		label string
		value string
	}{
		{"Total Customers", fmt.Sprintf("%d", s.TotalCustomers)},
		{"Avg Recency", fmt.Sprintf("%.1f days", s.AvgRecency)},
		{"Avg Frequency", fmt.Sprintf("%.1f", s.AvgFrequency)},
		{"Avg CLTV", s.AvgCLTV.StringFixed(2)},
	}

	for _, m := range metrics {
		fmt.Fprintf(w, "  %s %s\n",
			SubtleStyle.Render(fmt.Sprintf("%-16s", m.label)),
			MetricValueStyle.Render(m.value))
	}
	fmt.Fprintln(w)
}

func renderSegmentTable(w io.Writer, rows []SegmentRow) {
	fmt.Fprintln(w, TableHeaderStyle.Render(fmt.Sprintf("%-12s %9s %12s %14s %12s",
		"Segment", "Customers", "Avg Recency", "Avg Frequency", "Avg Spend")))
	for _, row := range rows {
		fmt.Fprintln(w, TableCellStyle.Render(fmt.Sprintf("%-12s %9d %12.1f %14.1f %12s",
			row.Segment, row.Count, row.AvgRecency, row.AvgFrequency, row.AvgMonetary.StringFixed(2))))
	}
	fmt.Fprintln(w)
}

func renderTopCustomers(w io.Writer, top []model.CustomerRFM) {
	if len(top) == 0 {
		return
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Top %d Customers by CLTV", len(top))))
	fmt.Fprintln(w, TableHeaderStyle.Render(fmt.Sprintf("%-14s %8s %10s %12s %-12s %12s",
		"Customer", "Recency", "Frequency", "Monetary", "Segment", "CLTV")))
	for _, c := range top {
		fmt.Fprintln(w, TableCellStyle.Render(fmt.Sprintf("%-14s %8d %10d %12s %-12s %12s",
			c.CustomerID, c.Recency, c.Frequency,
			c.Monetary.StringFixed(2), c.Segment, c.CLTV.StringFixed(2))))
	}
}

// RenderRules writes the segment decision table in priority order.
func RenderRules(w io.Writer, rules []RuleLine) {
	fmt.Fprintln(w, TitleStyle.Render("Segment rules (first match wins)"))
	for i, r := range rules {
		fmt.Fprintf(w, "  %s %-12s %s\n",
			SubtleStyle.Render(fmt.Sprintf("%d.", i+1)),
			string(r.Segment),
			SubtleStyle.Render(r.Condition))
	}
}

// RuleLine is one printable row of the decision table.
type RuleLine struct {
	Segment   model.Segment
	Condition string
}
