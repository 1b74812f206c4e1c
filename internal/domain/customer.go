package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the local mirror of a remote customer record.
// (OwnerAccountID, SourceID) is unique.
type Customer struct {
	ID               string          `json:"id"`
	OwnerAccountID   string          `json:"owner_account_id"`
	SourceID         int64           `json:"source_id"`
	SourceCreatedAt  time.Time       `json:"source_created_at"`
	SourceUpdatedAt  time.Time       `json:"source_updated_at"`
	EmailHash        string          `json:"email_hash"`
	EmailSalt        string          `json:"email_salt"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Phone            string          `json:"phone"`
	AcceptsMarketing bool            `json:"accepts_marketing"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	OrdersCount      int             `json:"orders_count"`
	ContentHash      string          `json:"-"`
	SyncedAt         time.Time       `json:"synced_at"`
}

// RemoteCustomer is a customer record as fetched from the commerce platform
type RemoteCustomer struct {
	ID               int64
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	AcceptsMarketing bool
	TotalSpent       decimal.Decimal
	OrdersCount      int
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}
