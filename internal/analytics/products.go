package analytics

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultProductsLimit caps the product performance table
const DefaultProductsLimit = 20

// ProductPerformance summarizes sales of one product
type ProductPerformance struct {
	ProductID       int64           `json:"productId"`
	Title           string          `json:"title"`
	Orders          int             `json:"orders"`
	Units           int             `json:"units"`
	Revenue         decimal.Decimal `json:"revenue"`
	Customers       int             `json:"customers"`
	RepeatCustomers int             `json:"repeatCustomers"`
	RepeatRate      float64         `json:"repeatRate"`
}

// ComputeProducts aggregates order line items per product, highest revenue first
func ComputeProducts(in Input, limit int) []ProductPerformance {
	if limit <= 0 {
		limit = DefaultProductsLimit
	}

	type acc struct {
		perf    ProductPerformance
		orders  map[string]bool
		byBuyer map[string]int
	}
	byProduct := make(map[string]*acc)

	for _, o := range sortedOrders(in.Orders) {
		buyer := o.CustomerKey()
		for _, li := range o.LineItems {
			key := productKey(li.ProductID, li.Title)
			a, ok := byProduct[key]
			if !ok {
				a = &acc{
					perf:    ProductPerformance{ProductID: li.ProductID, Title: li.Title},
					orders:  make(map[string]bool),
					byBuyer: make(map[string]int),
				}
				byProduct[key] = a
			}
			a.perf.Units += li.Quantity
			if o.CountsTowardRevenue() {
				a.perf.Revenue = a.perf.Revenue.Add(li.Price.Mul(decimal.NewFromInt(int64(li.Quantity))))
			}

			orderKey := strconv.FormatInt(o.SourceID, 10)
			if !a.orders[orderKey] {
				a.orders[orderKey] = true
				if buyer != "" {
					a.byBuyer[buyer]++
				}
			}
		}
	}

	out := make([]ProductPerformance, 0, len(byProduct))
	for _, a := range byProduct {
		a.perf.Orders = len(a.orders)
		a.perf.Customers = len(a.byBuyer)
		for _, n := range a.byBuyer {
			if n >= 2 {
				a.perf.RepeatCustomers++
			}
		}
		a.perf.RepeatRate = ratio(a.perf.RepeatCustomers, a.perf.Customers)
		a.perf.Revenue = money(a.perf.Revenue)
		out = append(out, a.perf)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// line items of deleted products carry no id
func productKey(id int64, title string) string {
	if id > 0 {
		return "id:" + strconv.FormatInt(id, 10)
	}
	return "title:" + title
}
