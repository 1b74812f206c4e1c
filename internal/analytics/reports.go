package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReport is one month of the sales series
type MonthlyReport struct {
	Month              string          `json:"month"`
	Orders             int             `json:"orders"`
	Revenue            decimal.Decimal `json:"revenue"`
	AverageOrderValue  decimal.Decimal `json:"averageOrderValue"`
	NewCustomers       int             `json:"newCustomers"`
	ReturningCustomers int             `json:"returningCustomers"`
}

// ComputeReports builds a monthly series for the last months months,
// oldest first. Months without orders are included with zeros.
func ComputeReports(in Input, months int) []MonthlyReport {
	if months <= 0 {
		months = DefaultCohortMonths
	}
	current := monthStart(in.Now)
	oldest := current.AddDate(0, -(months - 1), 0)

	out := make([]MonthlyReport, months)
	for i := range out {
		out[i] = MonthlyReport{
			Month:             oldest.AddDate(0, i, 0).Format(monthLayout),
			Revenue:           decimal.Zero,
			AverageOrderValue: decimal.Zero,
		}
	}
	index := func(t time.Time) int {
		i := monthsBetween(oldest, t)
		if i < 0 || i >= months {
			return -1
		}
		return i
	}

	paid := make([]int, months)
	for _, o := range in.Orders {
		if i := index(o.SourceCreatedAt); i >= 0 {
			out[i].Orders++
			if o.CountsTowardRevenue() {
				paid[i]++
				out[i].Revenue = out[i].Revenue.Add(o.TotalPrice)
			}
		}
	}

	for _, p := range profiles(in.Orders) {
		firstMonth := monthStart(p.first())
		counted := make(map[int]bool)
		for _, o := range p.orders {
			i := index(o.SourceCreatedAt)
			if i < 0 || counted[i] {
				continue
			}
			counted[i] = true
			if monthStart(o.SourceCreatedAt).Equal(firstMonth) {
				out[i].NewCustomers++
			} else {
				out[i].ReturningCustomers++
			}
		}
	}

	for i := range out {
		if paid[i] > 0 {
			out[i].AverageOrderValue = out[i].Revenue.DivRound(decimal.NewFromInt(int64(paid[i])), 2)
		}
		out[i].Revenue = money(out[i].Revenue)
	}
	return out
}
