package entity

import (
	"time"

	"retentionos/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoOrderDoc represents a mirrored order in MongoDB
type MongoOrderDoc struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty"`
	OwnerAccountID    string               `bson:"owner_account_id"`
	CustomerID        *primitive.ObjectID  `bson:"customer_id"`
	SourceID          int64                `bson:"source_id"`
	OrderNumber       int                  `bson:"order_number"`
	SourceCreatedAt   time.Time            `bson:"source_created_at"`
	SourceUpdatedAt   time.Time            `bson:"source_updated_at"`
	FinancialStatus   string               `bson:"financial_status"`
	SubtotalPrice     primitive.Decimal128 `bson:"subtotal_price"`
	TotalPrice        primitive.Decimal128 `bson:"total_price"`
	TotalTax          primitive.Decimal128 `bson:"total_tax"`
	Currency          string               `bson:"currency"`
	CustomerEmailHash string               `bson:"customer_email_hash"`
	LineItems         []MongoLineItemDoc   `bson:"line_items,omitempty"`
	ContentHash       string               `bson:"content_hash"`
	SyncedAt          time.Time            `bson:"synced_at"`
}

type MongoLineItemDoc struct {
	ProductID int64                `bson:"product_id"`
	Title     string               `bson:"title"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

func (d *MongoOrderDoc) ToDomain() *domain.Order {
	o := &domain.Order{
		ID:                idHex(d.ID),
		OwnerAccountID:    d.OwnerAccountID,
		CustomerID:        hexOrEmpty(d.CustomerID),
		SourceID:          d.SourceID,
		OrderNumber:       d.OrderNumber,
		SourceCreatedAt:   d.SourceCreatedAt,
		SourceUpdatedAt:   d.SourceUpdatedAt,
		FinancialStatus:   d.FinancialStatus,
		SubtotalPrice:     fromDecimal128(d.SubtotalPrice),
		TotalPrice:        fromDecimal128(d.TotalPrice),
		TotalTax:          fromDecimal128(d.TotalTax),
		Currency:          d.Currency,
		CustomerEmailHash: d.CustomerEmailHash,
		ContentHash:       d.ContentHash,
		SyncedAt:          d.SyncedAt,
	}
	for _, li := range d.LineItems {
		o.LineItems = append(o.LineItems, domain.LineItem{
			ProductID: li.ProductID,
			Title:     li.Title,
			Quantity:  li.Quantity,
			Price:     fromDecimal128(li.Price),
		})
	}
	return o
}

func MongoOrderDocFromDomain(o *domain.Order) *MongoOrderDoc {
	doc := &MongoOrderDoc{
		ID:                objectIDFromHex(o.ID),
		OwnerAccountID:    o.OwnerAccountID,
		SourceID:          o.SourceID,
		OrderNumber:       o.OrderNumber,
		SourceCreatedAt:   o.SourceCreatedAt,
		SourceUpdatedAt:   o.SourceUpdatedAt,
		FinancialStatus:   o.FinancialStatus,
		SubtotalPrice:     toDecimal128(o.SubtotalPrice),
		TotalPrice:        toDecimal128(o.TotalPrice),
		TotalTax:          toDecimal128(o.TotalTax),
		Currency:          o.Currency,
		CustomerEmailHash: o.CustomerEmailHash,
		ContentHash:       o.ContentHash,
		SyncedAt:          o.SyncedAt,
	}
	if o.CustomerID != "" {
		if id := objectIDFromHex(o.CustomerID); !id.IsZero() {
			doc.CustomerID = &id
		}
	}
	for _, li := range o.LineItems {
		doc.LineItems = append(doc.LineItems, MongoLineItemDoc{
			ProductID: li.ProductID,
			Title:     li.Title,
			Quantity:  li.Quantity,
			Price:     toDecimal128(li.Price),
		})
	}
	return doc
}
