package domain

import "time"

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

type SyncType string

const (
	SyncTypeFull SyncType = "full"
)

// RecordOutcome is what reconciliation did with one remote record
type RecordOutcome string

const (
	OutcomeIngested RecordOutcome = "ingested"
	OutcomeUpdated  RecordOutcome = "updated"
	OutcomeSkipped  RecordOutcome = "skipped"
)

// SyncResult is the per-entity outcome of a reconciliation pass
type SyncResult struct {
	Ingested     int   `json:"ingested" bson:"ingested"`
	Updated      int   `json:"updated" bson:"updated"`
	Skipped      int   `json:"skipped" bson:"skipped"`
	ShopifyCount int   `json:"shopifyCount" bson:"shopify_count"`
	LocalCount   int64 `json:"localCount" bson:"local_count"`
}

// Record counts one record outcome
func (r *SyncResult) Record(outcome RecordOutcome) {
	switch outcome {
	case OutcomeIngested:
		r.Ingested++
	case OutcomeUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
}

// SyncRun is the audit record of one sync invocation.
// It is created running and finished exactly once.
type SyncRun struct {
	ID             string      `json:"id"`
	OwnerAccountID string      `json:"owner_account_id"`
	SyncType       SyncType    `json:"sync_type"`
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	Status         SyncStatus  `json:"status"`
	RowsIngested   int         `json:"rows_ingested"`
	RowsUpdated    int         `json:"rows_updated"`
	RowsSkipped    int         `json:"rows_skipped"`
	ShopifyCount   int         `json:"shopify_count"`
	LocalCount     int64       `json:"local_count"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	Customers      *SyncResult `json:"customers,omitempty"`
	Orders         *SyncResult `json:"orders,omitempty"`
}

// NewSyncRun starts a running audit record
func NewSyncRun(id, ownerID string, syncType SyncType, now time.Time) *SyncRun {
	return &SyncRun{
		ID:             id,
		OwnerAccountID: ownerID,
		SyncType:       syncType,
		StartedAt:      now,
		Status:         SyncStatusRunning,
	}
}

// Complete marks the run completed with totals summed across entities
func (r *SyncRun) Complete(customers, orders SyncResult, now time.Time) {
	r.Status = SyncStatusCompleted
	r.CompletedAt = &now
	r.Customers = &customers
	r.Orders = &orders
	r.RowsIngested = customers.Ingested + orders.Ingested
	r.RowsUpdated = customers.Updated + orders.Updated
	r.RowsSkipped = customers.Skipped + orders.Skipped
	r.ShopifyCount = customers.ShopifyCount + orders.ShopifyCount
	r.LocalCount = customers.LocalCount + orders.LocalCount
}

// Fail marks the run failed. Partial per-entity results are kept when present.
func (r *SyncRun) Fail(err error, customers, orders *SyncResult, now time.Time) {
	r.Status = SyncStatusFailed
	r.CompletedAt = &now
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.Customers = customers
	r.Orders = orders
	for _, res := range []*SyncResult{customers, orders} {
		if res == nil {
			continue
		}
		r.RowsIngested += res.Ingested
		r.RowsUpdated += res.Updated
		r.RowsSkipped += res.Skipped
		r.ShopifyCount += res.ShopifyCount
		r.LocalCount += res.LocalCount
	}
}

// SyncOutcome is what a completed reconciliation returns to its caller
type SyncOutcome struct {
	SyncID    string     `json:"sync_id"`
	Customers SyncResult `json:"customers"`
	Orders    SyncResult `json:"orders"`
}

// SyncStage names a step of the reconciliation job
type SyncStage string

const (
	SyncStageStarted   SyncStage = "started"
	SyncStageCustomers SyncStage = "customers"
	SyncStageOrders    SyncStage = "orders"
	SyncStageFinished  SyncStage = "finished"
)

// SyncEvent is broadcast to listeners as a sync progresses
type SyncEvent struct {
	SyncID  string      `json:"sync_id"`
	OwnerID string      `json:"owner_id"`
	Stage   SyncStage   `json:"stage"`
	Status  SyncStatus  `json:"status"`
	Result  *SyncResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}
