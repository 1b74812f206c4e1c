package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultChurnLimit caps the churn risk table
const DefaultChurnLimit = 50

// RiskLevel buckets a churn score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ChurnEntry is one purchaser's churn assessment
type ChurnEntry struct {
	CustomerKey        string          `json:"customerKey"`
	CustomerID         string          `json:"customerId,omitempty"`
	LastOrderAt        time.Time       `json:"lastOrderAt"`
	DaysSinceLastOrder int             `json:"daysSinceLastOrder"`
	Orders             int             `json:"orders"`
	Revenue            decimal.Decimal `json:"revenue"`
	Score              int             `json:"score"`
	Level              RiskLevel       `json:"level"`
}

// ChurnScore rates how overdue a purchaser is, 0 to 100. Repeat buyers are
// measured against twice their own average gap between orders, one-time
// buyers against the window.
func ChurnScore(daysSince int, averageGapDays float64, window time.Duration) int {
	expected := window.Hours() / 24
	if averageGapDays > 0 {
		expected = 2 * averageGapDays
	}
	if expected <= 0 {
		return 100
	}
	score := math.Round(float64(daysSince) / expected * 100)
	return int(math.Min(100, math.Max(0, score)))
}

// LevelFor maps a score to a risk level
func LevelFor(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ComputeChurnRisk scores every purchaser, riskiest first
func ComputeChurnRisk(in Input, limit int) []ChurnEntry {
	if limit <= 0 {
		limit = DefaultChurnLimit
	}

	out := churnEntries(in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func churnEntries(in Input) []ChurnEntry {
	buyers := profiles(in.Orders)
	out := make([]ChurnEntry, 0, len(buyers))
	for _, p := range buyers {
		out = append(out, churnEntry(p, in.Now, in.window()))
	}
	return out
}

func churnEntry(p *profile, now time.Time, window time.Duration) ChurnEntry {
	days := p.daysSinceLast(now)
	score := ChurnScore(days, p.averageGapDays(), window)
	return ChurnEntry{
		CustomerKey:        p.key,
		CustomerID:         p.customerID,
		LastOrderAt:        p.last(),
		DaysSinceLastOrder: days,
		Orders:             len(p.orders),
		Revenue:            money(p.revenue),
		Score:              score,
		Level:              LevelFor(score),
	}
}
