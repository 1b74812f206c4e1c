package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the local mirror of a remote order record.
// CustomerID is empty when the embedded customer has no local row.
type Order struct {
	ID                string          `json:"id"`
	OwnerAccountID    string          `json:"owner_account_id"`
	CustomerID        string          `json:"customer_id,omitempty"`
	SourceID          int64           `json:"source_id"`
	OrderNumber       int             `json:"order_number"`
	SourceCreatedAt   time.Time       `json:"source_created_at"`
	SourceUpdatedAt   time.Time       `json:"source_updated_at"`
	FinancialStatus   string          `json:"financial_status"`
	SubtotalPrice     decimal.Decimal `json:"subtotal_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	Currency          string          `json:"currency"`
	CustomerEmailHash string          `json:"customer_email_hash,omitempty"`
	LineItems         []LineItem      `json:"line_items,omitempty"`
	ContentHash       string          `json:"-"`
	SyncedAt          time.Time       `json:"synced_at"`
}

// LineItem is a purchased product line on an order
type LineItem struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CustomerKey identifies the purchaser of an order for analytics.
// Falls back to the email hash for orders without a linked customer.
func (o *Order) CustomerKey() string {
	if o.CustomerID != "" {
		return o.CustomerID
	}
	if o.CustomerEmailHash != "" {
		return "email:" + o.CustomerEmailHash
	}
	return ""
}

// Financial statuses whose orders carry no revenue
const (
	FinancialStatusRefunded = "refunded"
	FinancialStatusVoided   = "voided"
)

// CountsTowardRevenue reports whether the order's total belongs in revenue figures.
// Partially refunded orders still count at their full total.
func (o *Order) CountsTowardRevenue() bool {
	switch strings.ToLower(o.FinancialStatus) {
	case FinancialStatusRefunded, FinancialStatusVoided:
		return false
	}
	return true
}

// RemoteOrder is an order record as fetched from the commerce platform
type RemoteOrder struct {
	ID               int64
	OrderNumber      int
	CustomerSourceID int64 // zero when the order has no customer
	Email            string
	FinancialStatus  string
	SubtotalPrice    decimal.Decimal
	TotalPrice       decimal.Decimal
	TotalTax         decimal.Decimal
	Currency         string
	LineItems        []LineItem
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

// Product is a catalog entry as fetched from the commerce platform
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Vendor      string     `json:"vendor,omitempty"`
	ProductType string     `json:"product_type,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ShopInfo describes the connected store
type ShopInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Domain   string `json:"domain"`
	Currency string `json:"currency,omitempty"`
	PlanName string `json:"plan_name,omitempty"`
}
