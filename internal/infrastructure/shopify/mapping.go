package shopify

import (
	"encoding/json"
	"fmt"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

func customerFromShopify(c goshopify.Customer) domain.RemoteCustomer {
	return domain.RemoteCustomer{
		ID:               int64(c.Id),
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		AcceptsMarketing: c.AcceptsMarketing,
		TotalSpent:       decimalOrZero(c.TotalSpent),
		OrdersCount:      c.OrdersCount,
		CreatedAt:        utc(c.CreatedAt),
		UpdatedAt:        utc(c.UpdatedAt),
	}
}

func orderFromShopify(o goshopify.Order) domain.RemoteOrder {
	out := domain.RemoteOrder{
		ID:              int64(o.Id),
		OrderNumber:     o.OrderNumber,
		Email:           o.Email,
		FinancialStatus: string(o.FinancialStatus),
		SubtotalPrice:   decimalOrZero(o.SubtotalPrice),
		TotalPrice:      decimalOrZero(o.TotalPrice),
		TotalTax:        decimalOrZero(o.TotalTax),
		Currency:        o.Currency,
		CreatedAt:       utc(o.CreatedAt),
		UpdatedAt:       utc(o.UpdatedAt),
	}
	if o.Customer != nil {
		out.CustomerSourceID = int64(o.Customer.Id)
		if out.Email == "" {
			out.Email = o.Customer.Email
		}
	}
	for _, li := range o.LineItems {
		out.LineItems = append(out.LineItems, domain.LineItem{
			ProductID: int64(li.ProductId),
			Title:     li.Title,
			Quantity:  li.Quantity,
			Price:     decimalOrZero(li.Price),
		})
	}
	return out
}

func productFromShopify(p goshopify.Product) domain.Product {
	return domain.Product{
		ID:          int64(p.Id),
		Title:       p.Title,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Status:      string(p.Status),
		CreatedAt:   utc(p.CreatedAt),
		UpdatedAt:   utc(p.UpdatedAt),
	}
}

func shopInfoFromShopify(s *goshopify.Shop) *domain.ShopInfo {
	domainName := s.MyshopifyDomain
	if domainName == "" {
		domainName = s.Domain
	}
	return &domain.ShopInfo{
		ID:       int64(s.Id),
		Name:     s.Name,
		Email:    s.Email,
		Domain:   domainName,
		Currency: s.Currency,
		PlanName: s.PlanName,
	}
}

// PayloadDecoder decodes webhook bodies with go-shopify's resource types
type PayloadDecoder struct{}

var _ ports.WebhookDecoder = PayloadDecoder{}

func (PayloadDecoder) DecodeCustomer(payload []byte) (domain.RemoteCustomer, error) {
	return ParseCustomerPayload(payload)
}

func (PayloadDecoder) DecodeOrder(payload []byte) (domain.RemoteOrder, error) {
	return ParseOrderPayload(payload)
}

// ParseCustomerPayload decodes a customers/* webhook body
func ParseCustomerPayload(payload []byte) (domain.RemoteCustomer, error) {
	var c goshopify.Customer
	if err := json.Unmarshal(payload, &c); err != nil {
		return domain.RemoteCustomer{}, fmt.Errorf("failed to decode customer payload: %w", err)
	}
	return customerFromShopify(c), nil
}

// ParseOrderPayload decodes an orders/* webhook body
func ParseOrderPayload(payload []byte) (domain.RemoteOrder, error) {
	var o goshopify.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return domain.RemoteOrder{}, fmt.Errorf("failed to decode order payload: %w", err)
	}
	return orderFromShopify(o), nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func utc(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
