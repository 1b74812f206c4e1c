package entity

import (
	"time"

	"retentionos/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoCustomerDoc represents a mirrored customer in MongoDB
type MongoCustomerDoc struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	OwnerAccountID   string               `bson:"owner_account_id"`
	SourceID         int64                `bson:"source_id"`
	SourceCreatedAt  time.Time            `bson:"source_created_at"`
	SourceUpdatedAt  time.Time            `bson:"source_updated_at"`
	EmailHash        string               `bson:"email_hash"`
	EmailSalt        string               `bson:"email_salt"`
	FirstName        string               `bson:"first_name"`
	LastName         string               `bson:"last_name"`
	Phone            string               `bson:"phone"`
	AcceptsMarketing bool                 `bson:"accepts_marketing"`
	TotalSpent       primitive.Decimal128 `bson:"total_spent"`
	OrdersCount      int                  `bson:"orders_count"`
	ContentHash      string               `bson:"content_hash"`
	SyncedAt         time.Time            `bson:"synced_at"`
}

func (d *MongoCustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:               idHex(d.ID),
		OwnerAccountID:   d.OwnerAccountID,
		SourceID:         d.SourceID,
		SourceCreatedAt:  d.SourceCreatedAt,
		SourceUpdatedAt:  d.SourceUpdatedAt,
		EmailHash:        d.EmailHash,
		EmailSalt:        d.EmailSalt,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Phone:            d.Phone,
		AcceptsMarketing: d.AcceptsMarketing,
		TotalSpent:       fromDecimal128(d.TotalSpent),
		OrdersCount:      d.OrdersCount,
		ContentHash:      d.ContentHash,
		SyncedAt:         d.SyncedAt,
	}
}

func MongoCustomerDocFromDomain(c *domain.Customer) *MongoCustomerDoc {
	return &MongoCustomerDoc{
		ID:               objectIDFromHex(c.ID),
		OwnerAccountID:   c.OwnerAccountID,
		SourceID:         c.SourceID,
		SourceCreatedAt:  c.SourceCreatedAt,
		SourceUpdatedAt:  c.SourceUpdatedAt,
		EmailHash:        c.EmailHash,
		EmailSalt:        c.EmailSalt,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		AcceptsMarketing: c.AcceptsMarketing,
		TotalSpent:       toDecimal128(c.TotalSpent),
		OrdersCount:      c.OrdersCount,
		ContentHash:      c.ContentHash,
		SyncedAt:         c.SyncedAt,
	}
}
