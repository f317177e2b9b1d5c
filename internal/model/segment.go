package model

import "fmt"

// Segment is a categorical customer label derived from RFM scores.
type Segment string

const (
	// SegmentChampion represents customers with the maximum score on all three metrics.
	SegmentChampion Segment = "Champion"
	// SegmentLoyal represents customers who buy often and spend heavily.
	SegmentLoyal Segment = "Loyal"
	// SegmentPotential represents recent customers with growing purchase counts.
	SegmentPotential Segment = "Potential"
	// SegmentAtRisk represents customers who were active but have gone quiet.
	SegmentAtRisk Segment = "At Risk"
	// SegmentHibernating represents everyone not matched by an earlier rule.
	SegmentHibernating Segment = "Hibernating"
)

// AllSegments returns every segment in rule priority order.
func AllSegments() []Segment {
	return []Segment{
		SegmentChampion,
		SegmentLoyal,
		SegmentPotential,
		SegmentAtRisk,
		SegmentHibernating,
	}
}

// Valid reports whether s is one of the five known segments.
func (s Segment) Valid() bool {
	switch s {
	case SegmentChampion, SegmentLoyal, SegmentPotential, SegmentAtRisk, SegmentHibernating:
		return true
	}
	return false
}

// ParseSegment converts a string to a Segment, failing on unknown labels.
func ParseSegment(s string) (Segment, error) {
	seg := Segment(s)
	if !seg.Valid() {
		return "", fmt.Errorf("unknown segment: %q", s)
	}
	return seg, nil
}
