package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

const maxReactivationCandidates = 25

// Reactivation compares lapsed purchasers with those who came back
type Reactivation struct {
	ReactivatedCustomers int             `json:"reactivatedCustomers"`
	ReactivatedRevenue   decimal.Decimal `json:"reactivatedRevenue"`
	LapsedCustomers      int             `json:"lapsedCustomers"`
	ReactivationRate     float64         `json:"reactivationRate"`
	Candidates           []ChurnEntry    `json:"candidates"`
}

// ComputeReactivation finds purchasers who ordered again after a gap at
// least as long as the window, and the currently lapsed ones worth
// winning back, highest lifetime revenue first.
func ComputeReactivation(in Input) Reactivation {
	window := in.window()
	out := Reactivation{ReactivatedRevenue: decimal.Zero, Candidates: []ChurnEntry{}}

	for _, p := range profiles(in.Orders) {
		if p.daysSinceLast(in.Now) >= int(window/day) {
			out.LapsedCustomers++
			out.Candidates = append(out.Candidates, churnEntry(p, in.Now, window))
			continue
		}

		for i := 1; i < len(p.orders); i++ {
			gap := p.orders[i].SourceCreatedAt.Sub(p.orders[i-1].SourceCreatedAt)
			if gap < window {
				continue
			}
			out.ReactivatedCustomers++
			out.ReactivatedRevenue = out.ReactivatedRevenue.Add(sumRevenue(p.orders[i:]))
			break
		}
	}

	out.ReactivatedRevenue = money(out.ReactivatedRevenue)
	out.ReactivationRate = ratio(out.ReactivatedCustomers, out.ReactivatedCustomers+out.LapsedCustomers)

	sort.SliceStable(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].Revenue.GreaterThan(out.Candidates[j].Revenue)
	})
	if len(out.Candidates) > maxReactivationCandidates {
		out.Candidates = out.Candidates[:maxReactivationCandidates]
	}
	return out
}
