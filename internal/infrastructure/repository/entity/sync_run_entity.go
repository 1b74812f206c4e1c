package entity

import (
	"time"

	"retentionos/internal/domain"
)

// MongoSyncRunDoc represents a sync audit record in MongoDB
type MongoSyncRunDoc struct {
	ID             string             `bson:"_id"`
	OwnerAccountID string             `bson:"owner_account_id"`
	SyncType       string             `bson:"sync_type"`
	StartedAt      time.Time          `bson:"started_at"`
	CompletedAt    *time.Time         `bson:"completed_at,omitempty"`
	Status         string             `bson:"status"`
	RowsIngested   int                `bson:"rows_ingested"`
	RowsUpdated    int                `bson:"rows_updated"`
	RowsSkipped    int                `bson:"rows_skipped"`
	ShopifyCount   int                `bson:"shopify_count"`
	LocalCount     int64              `bson:"local_count"`
	ErrorMessage   string             `bson:"error_message,omitempty"`
	Customers      *domain.SyncResult `bson:"customers,omitempty"`
	Orders         *domain.SyncResult `bson:"orders,omitempty"`
}

func (d *MongoSyncRunDoc) ToDomain() *domain.SyncRun {
	return &domain.SyncRun{
		ID:             d.ID,
		OwnerAccountID: d.OwnerAccountID,
		SyncType:       domain.SyncType(d.SyncType),
		StartedAt:      d.StartedAt,
		CompletedAt:    d.CompletedAt,
		Status:         domain.SyncStatus(d.Status),
		RowsIngested:   d.RowsIngested,
		RowsUpdated:    d.RowsUpdated,
		RowsSkipped:    d.RowsSkipped,
		ShopifyCount:   d.ShopifyCount,
		LocalCount:     d.LocalCount,
		ErrorMessage:   d.ErrorMessage,
		Customers:      d.Customers,
		Orders:         d.Orders,
	}
}

func MongoSyncRunDocFromDomain(r *domain.SyncRun) *MongoSyncRunDoc {
	return &MongoSyncRunDoc{
		ID:             r.ID,
		OwnerAccountID: r.OwnerAccountID,
		SyncType:       string(r.SyncType),
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		Status:         string(r.Status),
		RowsIngested:   r.RowsIngested,
		RowsUpdated:    r.RowsUpdated,
		RowsSkipped:    r.RowsSkipped,
		ShopifyCount:   r.ShopifyCount,
		LocalCount:     r.LocalCount,
		ErrorMessage:   r.ErrorMessage,
		Customers:      r.Customers,
		Orders:         r.Orders,
	}
}
