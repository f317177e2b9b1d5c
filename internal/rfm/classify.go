package rfm

import (
	"github.com/rfmscope/rfmscope/internal/model"
)

// Rule is one row of the segment decision table.
type Rule struct {
	Matches func(r, f, m, rfmScore int) bool
	Segment model.Segment
	// Condition is the human-readable form of Matches, for display.
	Condition string
}

// Rules returns the segment decision table in priority order. Evaluation is
// first match wins; the final rule matches everything.
func Rules() []Rule {
	return []Rule{
		{
			Segment:   model.SegmentChampion,
			Condition: "RFM_Score >= 555",
			Matches:   func(_, _, _, rfmScore int) bool { return rfmScore >= 555 },
		},
		{
			Segment:   model.SegmentLoyal,
			Condition: "F_Score >= 4 and M_Score >= 4",
			Matches:   func(_, f, m, _ int) bool { return f >= 4 && m >= 4 },
		},
		{
			Segment:   model.SegmentPotential,
			Condition: "R_Score >= 4 and F_Score >= 3",
			Matches:   func(r, f, _, _ int) bool { return r >= 4 && f >= 3 },
		},
		{
			Segment:   model.SegmentAtRisk,
			Condition: "R_Score <= 2 and F_Score <= 2",
			Matches:   func(r, f, _, _ int) bool { return r <= 2 && f <= 2 },
		},
		{
			Segment:   model.SegmentHibernating,
			Condition: "otherwise",
			Matches:   func(_, _, _, _ int) bool { return true },
		},
	}
}

// Classify maps one customer's scores to a segment using the decision table.
// It is pure and total: every score combination lands on exactly one segment.
func Classify(r, f, m, rfmScore int) model.Segment {
	for _, rule := range Rules() {
		if rule.Matches(r, f, m, rfmScore) {
			return rule.Segment
		}
	}
	// Unreachable: the last rule always matches.
	return model.SegmentHibernating
}

// ClassifyAll assigns a segment to every customer in place.
func ClassifyAll(customers []model.CustomerRFM) {
	for i := range customers {
		c := &customers[i]
		c.Segment = Classify(c.RScore, c.FScore, c.MScore, c.RFMScore)
	}
}
