package api

import (
	"context"
	"net/url"

	"retentionos/internal/analytics"
	"retentionos/internal/application"
	"retentionos/internal/domain"
)

// SyncRunner triggers and lists reconciliation runs
type SyncRunner interface {
	Run(ctx context.Context, ownerID string) (*domain.SyncOutcome, error)
	Runs(ctx context.Context, ownerID string, limit int) ([]*domain.SyncRun, error)
}

// ConnectionManager drives the store connection lifecycle
type ConnectionManager interface {
	AuthorizeURL(shop, state string) (authURL string, shopDomain string, err error)
	VerifyCallback(u *url.URL) (bool, error)
	CompleteOAuth(ctx context.Context, ownerID, shop, code string) (*domain.Connection, error)
	Disconnect(ctx context.Context, ownerID string) error
	Status(ctx context.Context, ownerID string) (*application.ConnectionStatus, error)
	Products(ctx context.Context, ownerID string, limit int) ([]domain.Product, error)
}

// MetricsReader serves the dashboard metrics
type MetricsReader interface {
	Overview(ctx context.Context, ownerID string) (analytics.Overview, error)
	Cohorts(ctx context.Context, ownerID string, months int) ([]analytics.Cohort, error)
	Products(ctx context.Context, ownerID string, limit int) ([]analytics.ProductPerformance, error)
	ChurnRisk(ctx context.Context, ownerID string, limit int) ([]analytics.ChurnEntry, error)
	Reactivation(ctx context.Context, ownerID string) (analytics.Reactivation, error)
	Segments(ctx context.Context, ownerID string) ([]analytics.Segment, error)
	Reports(ctx context.Context, ownerID string, months int) ([]analytics.MonthlyReport, error)
}

// WebhookVerifier checks Shopify's webhook signature
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, hmacHeader string) bool
}

// WebhookDispatcher routes verified webhook events
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, event *domain.WebhookEvent) (bool, error)
}
