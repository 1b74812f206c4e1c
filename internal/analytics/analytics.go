// Package analytics reduces an owner's mirrored customers and orders into
// the summaries the dashboard renders. Every function is pure: rows and the
// reference time are passed in.
package analytics

import (
	"sort"
	"time"

	"retentionos/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultWindow is the inactivity period after which a customer counts as at risk
const DefaultWindow = 90 * 24 * time.Hour

const day = 24 * time.Hour

// Input is the data every reduction works on
type Input struct {
	Customers []*domain.Customer
	Orders    []*domain.Order
	Now       time.Time
	Window    time.Duration
}

func (in Input) window() time.Duration {
	if in.Window <= 0 {
		return DefaultWindow
	}
	return in.Window
}

// profile is one purchaser's order history
type profile struct {
	key        string
	customerID string
	orders     []*domain.Order // ascending by creation
	revenue    decimal.Decimal
}

func (p *profile) first() time.Time { return p.orders[0].SourceCreatedAt }
func (p *profile) last() time.Time  { return p.orders[len(p.orders)-1].SourceCreatedAt }

func (p *profile) daysSinceLast(now time.Time) int {
	return daysBetween(p.last(), now)
}

// averageGapDays is the mean number of days between consecutive orders
func (p *profile) averageGapDays() float64 {
	if len(p.orders) < 2 {
		return 0
	}
	span := p.last().Sub(p.first())
	return span.Hours() / 24 / float64(len(p.orders)-1)
}

// profiles groups orders by purchaser. Orders without any customer
// identity are left out.
func profiles(orders []*domain.Order) []*profile {
	byKey := make(map[string]*profile)
	for _, o := range sortedOrders(orders) {
		key := o.CustomerKey()
		if key == "" {
			continue
		}
		p, ok := byKey[key]
		if !ok {
			p = &profile{key: key, customerID: o.CustomerID}
			byKey[key] = p
		}
		p.orders = append(p.orders, o)
		p.revenue = p.revenue.Add(revenueOf(o))
	}

	out := make([]*profile, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func sortedOrders(orders []*domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceCreatedAt.Before(out[j].SourceCreatedAt)
	})
	return out
}

// revenueOf is the order total, or zero for refunded and voided orders
func revenueOf(o *domain.Order) decimal.Decimal {
	if !o.CountsTowardRevenue() {
		return decimal.Zero
	}
	return o.TotalPrice
}

func sumRevenue(orders []*domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(revenueOf(o))
	}
	return total
}

// paidOrders counts the orders that carry revenue
func paidOrders(orders []*domain.Order) int {
	n := 0
	for _, o := range orders {
		if o.CountsTowardRevenue() {
			n++
		}
	}
	return n
}

// ratio returns a/b rounded to four places, or 0 when b is 0
func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(a)).DivRound(decimal.NewFromInt(int64(b)), 4).InexactFloat64()
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / day)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthsBetween(from, to time.Time) int {
	from, to = monthStart(from), monthStart(to)
	return (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
}

const monthLayout = "2006-01"
