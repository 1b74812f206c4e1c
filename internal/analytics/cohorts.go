package analytics

import "time"

// DefaultCohortMonths is how many monthly cohorts are reported by default
const DefaultCohortMonths = 12

// Cohort groups purchasers by the month of their first order
type Cohort struct {
	Month     string       `json:"month"`
	Customers int          `json:"customers"`
	Retention []CohortCell `json:"retention"`
}

// CohortCell is the share of a cohort that ordered again Offset months later
type CohortCell struct {
	Offset   int     `json:"offset"`
	Retained int     `json:"retained"`
	Rate     float64 `json:"rate"`
}

// ComputeCohorts builds first-order cohorts for the months most recent
// months, oldest first. Offset 0 is always the full cohort.
func ComputeCohorts(in Input, months int) []Cohort {
	if months <= 0 {
		months = DefaultCohortMonths
	}
	current := monthStart(in.Now)
	oldest := current.AddDate(0, -(months - 1), 0)

	type bucket struct {
		start   time.Time
		members []*profile
	}
	buckets := make(map[time.Time]*bucket)
	for _, p := range profiles(in.Orders) {
		start := monthStart(p.first())
		if start.Before(oldest) || start.After(current) {
			continue
		}
		b, ok := buckets[start]
		if !ok {
			b = &bucket{start: start}
			buckets[start] = b
		}
		b.members = append(b.members, p)
	}

	out := make([]Cohort, 0, len(buckets))
	for start := oldest; !start.After(current); start = start.AddDate(0, 1, 0) {
		b, ok := buckets[start]
		if !ok {
			continue
		}
		span := monthsBetween(start, current)
		retained := make([]int, span+1)
		for _, p := range b.members {
			seen := make(map[int]bool)
			for _, o := range p.orders {
				offset := monthsBetween(start, o.SourceCreatedAt)
				if offset >= 0 && offset <= span && !seen[offset] {
					seen[offset] = true
					retained[offset]++
				}
			}
		}

		cohort := Cohort{Month: start.Format(monthLayout), Customers: len(b.members)}
		for offset, n := range retained {
			cohort.Retention = append(cohort.Retention, CohortCell{
				Offset:   offset,
				Retained: n,
				Rate:     ratio(n, len(b.members)),
			})
		}
		out = append(out, cohort)
	}
	return out
}
