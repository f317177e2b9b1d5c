package rfm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/rfmscope/rfmscope/internal/common"
	"github.com/rfmscope/rfmscope/internal/model"
)

// Options controls quintile scoring behavior.
type Options struct {
	// RankTies replaces a metric with its first-seen-stable rank when the raw
	// values cannot form five distinct quantile edges. Frequency is always
	// ranked this way; Recency and Monetary only when this is set. Without it
	// a degenerate metric fails with InsufficientDataError.
	RankTies bool
}

var (
	ascendingLabels  = [5]int{1, 2, 3, 4, 5}
	descendingLabels = [5]int{5, 4, 3, 2, 1}
)

// Score assigns R/F/M scores in {1..5} by quintile rank within the cohort and
// fills RFMScore. Bin edges are recomputed from the current population on every
// call; nothing is cached across runs. The slice is modified in place.
func Score(_ context.Context, customers []model.CustomerRFM, opts Options) error {
	if len(customers) == 0 {
		return nil
	}

	recency := make([]float64, len(customers))
	frequency := make([]float64, len(customers))
	monetary := make([]float64, len(customers))
	for i, c := range customers {
		recency[i] = float64(c.Recency)
		frequency[i] = float64(c.Frequency)
		monetary[i] = c.Monetary.InexactFloat64()
	}

	// Lower recency means a more recent purchase, so its labels descend.
	rScores, err := scoreMetric("Recency", recency, descendingLabels, opts.RankTies)
	if err != nil {
		return err
	}

	// Frequency is discrete and heavily tied (many one-invoice customers), so
	// it is always ranked before binning.
	fScores, err := scoreMetric("Frequency", firstSeenRank(frequency), ascendingLabels, false)
	if err != nil {
		return err
	}

	mScores, err := scoreMetric("Monetary", monetary, ascendingLabels, opts.RankTies)
	if err != nil {
		return err
	}

	for i := range customers {
		customers[i].RScore = rScores[i]
		customers[i].FScore = fScores[i]
		customers[i].MScore = mScores[i]
		customers[i].RFMScore = rScores[i]*100 + fScores[i]*10 + mScores[i]
	}

	slog.Debug("Scored customers", "customers", len(customers), "rank_ties", opts.RankTies)

	return nil
}

// scoreMetric bins one metric into quintiles and maps each bin to its label.
// rankFallback retries on rank-transformed values when the raw distribution is
// too tied to cut.
func scoreMetric(name string, values []float64, labels [5]int, rankFallback bool) ([]int, error) {
	bins, err := quintileBins(values)
	if err != nil {
		if !rankFallback {
			return nil, fmt.Errorf("score %s: %w", name, metricError(name, err))
		}
		bins, err = quintileBins(firstSeenRank(values))
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", name, metricError(name, err))
		}
	}

	scores := make([]int, len(values))
	for i, bin := range bins {
		scores[i] = labels[bin]
	}
	return scores, nil
}

// metricError attaches the metric name to a degenerate-edges failure.
func metricError(name string, err error) error {
	if degenerate, ok := err.(*degenerateEdgesError); ok {
		return &common.InsufficientDataError{Metric: name, Distinct: degenerate.distinct}
	}
	return err
}

type degenerateEdgesError struct {
	distinct int
}

func (e *degenerateEdgesError) Error() string {
	return fmt.Sprintf("quantile edges collapse: %d distinct values", e.distinct)
}

// quintileBins assigns each value a bin in {0..4} using equal-frequency
// quantile cut points (linear interpolation, right-closed intervals). All six
// edges must be distinct; equal adjacent edges mean the population cannot be
// split into five bins.
func quintileBins(values []float64) ([]int, error) {
	n := len(values)
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	edges := make([]float64, 6)
	for i := 0; i <= 5; i++ {
		edges[i] = quantile(sorted, float64(i)/5)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, &degenerateEdgesError{distinct: distinctCount(sorted)}
		}
	}

	inner := edges[1:5]
	bins := make([]int, n)
	for i, v := range values {
		// Right-closed: a value equal to cut point k belongs to bin k.
		bins[i] = sort.SearchFloat64s(inner, v)
	}
	return bins, nil
}

// quantile computes the q-quantile of sorted values by linear interpolation
// between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// firstSeenRank maps values to ranks 1..n, breaking ties by position in the
// slice. The result has no ties, so quantile edges over it are always distinct
// for cohorts of at least two customers.
func firstSeenRank(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, len(values))
	for pos, idx := range order {
		ranks[idx] = float64(pos + 1)
	}
	return ranks
}

func distinctCount(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	count := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			count++
		}
	}
	return count
}
