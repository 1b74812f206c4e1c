package analytics

import (
	"github.com/shopspring/decimal"
)

// SegmentName labels a customer segment
type SegmentName string

const (
	SegmentChampions SegmentName = "champions"
	SegmentLoyal     SegmentName = "loyal"
	SegmentNew       SegmentName = "new"
	SegmentAtRisk    SegmentName = "at_risk"
	SegmentLost      SegmentName = "lost"
	SegmentOther     SegmentName = "other"
)

var segmentOrder = []SegmentName{
	SegmentChampions, SegmentLoyal, SegmentNew, SegmentAtRisk, SegmentLost, SegmentOther,
}

const (
	championOrders  = 5
	newCustomerDays = 30
)

// Segment is the size and value of one segment
type Segment struct {
	Name      SegmentName     `json:"name"`
	Customers int             `json:"customers"`
	Revenue   decimal.Decimal `json:"revenue"`
	Share     float64         `json:"share"`
}

// Classify assigns a purchaser to a segment from recency and frequency.
// Recency wins over frequency.
func Classify(daysSince, orders int, windowDays int) SegmentName {
	switch {
	case daysSince >= 2*windowDays:
		return SegmentLost
	case daysSince >= windowDays:
		return SegmentAtRisk
	case orders >= championOrders:
		return SegmentChampions
	case orders >= 2:
		return SegmentLoyal
	case orders == 1 && daysSince <= newCustomerDays:
		return SegmentNew
	default:
		return SegmentOther
	}
}

// ComputeSegments splits purchasers into segments. Every segment is
// reported, empty ones included.
func ComputeSegments(in Input) []Segment {
	windowDays := int(in.window() / day)
	buyers := profiles(in.Orders)

	bySegment := make(map[SegmentName]*Segment, len(segmentOrder))
	for _, name := range segmentOrder {
		bySegment[name] = &Segment{Name: name, Revenue: decimal.Zero}
	}
	for _, p := range buyers {
		s := bySegment[Classify(p.daysSinceLast(in.Now), len(p.orders), windowDays)]
		s.Customers++
		s.Revenue = s.Revenue.Add(p.revenue)
	}

	out := make([]Segment, 0, len(segmentOrder))
	for _, name := range segmentOrder {
		s := bySegment[name]
		s.Revenue = money(s.Revenue)
		s.Share = ratio(s.Customers, len(buyers))
		out = append(out, *s)
	}
	return out
}
