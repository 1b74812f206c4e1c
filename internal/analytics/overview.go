package analytics

import (
	"github.com/shopspring/decimal"
)

// Overview is the headline retention summary
type Overview struct {
	TotalCustomers           int             `json:"totalCustomers"`
	RepeatCustomers          int             `json:"repeatCustomers"`
	RetentionRate            float64         `json:"retentionRate"`
	TotalOrders              int             `json:"totalOrders"`
	TotalRevenue             decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue        decimal.Decimal `json:"averageOrderValue"`
	AverageOrdersPerCustomer float64         `json:"averageOrdersPerCustomer"`
	CustomerLifetimeValue    decimal.Decimal `json:"customerLifetimeValue"`
	AtRiskCustomers          int             `json:"atRiskCustomers"`
}

// ComputeOverview reduces the owner's data to the overview card values.
//
// Retention is the share of customers with two or more lifetime orders.
// Refunded and voided orders count as orders but add no revenue, and are
// left out of average order value. Lifetime value is average order value
// times average revenue-bearing orders per purchaser.
// A purchaser is at risk when their last order is older than the window.
func ComputeOverview(in Input) Overview {
	revenue := sumRevenue(in.Orders)
	out := Overview{
		TotalCustomers: len(in.Customers),
		TotalOrders:    len(in.Orders),
		TotalRevenue:   money(revenue),
	}

	for _, c := range in.Customers {
		if c.OrdersCount >= 2 {
			out.RepeatCustomers++
		}
	}
	out.RetentionRate = ratio(out.RepeatCustomers, out.TotalCustomers)

	if paid := paidOrders(in.Orders); paid > 0 {
		out.AverageOrderValue = revenue.DivRound(decimal.NewFromInt(int64(paid)), 2)
	}

	buyers := profiles(in.Orders)
	if len(buyers) > 0 {
		purchased, paid := 0, 0
		for _, p := range buyers {
			purchased += len(p.orders)
			paid += paidOrders(p.orders)
			if p.daysSinceLast(in.Now) >= int(in.window()/day) {
				out.AtRiskCustomers++
			}
		}
		count := decimal.NewFromInt(int64(len(buyers)))
		out.AverageOrdersPerCustomer = decimal.NewFromInt(int64(purchased)).DivRound(count, 4).InexactFloat64()
		paidPerCustomer := decimal.NewFromInt(int64(paid)).DivRound(count, 4)
		out.CustomerLifetimeValue = money(out.AverageOrderValue.Mul(paidPerCustomer))
	}

	return out
}
