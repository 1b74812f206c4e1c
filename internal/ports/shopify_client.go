package ports

import (
	"context"
	"net/url"
	"time"

	"retentionos/internal/domain"
)

// Pager walks a remote collection page by page.
// Next returns io.EOF once the collection or the page budget is exhausted.
type Pager[T any] interface {
	Next(ctx context.Context) ([]T, error)
}

// PageOptions bounds a paginated fetch
type PageOptions struct {
	PageSize int // records per page, capped at the platform maximum
	MaxPages int // 0 means follow the cursor to the end

	UpdatedAtMin *time.Time
}

// TokenGrant is the result of an OAuth code exchange
type TokenGrant struct {
	AccessToken string
	Scope       string
}

// ShopifyClient defines the interface for Shopify API operations
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string) (*TokenGrant, error)
	VerifyCallback(u *url.URL) (bool, error)
	VerifyWebhook(payload []byte, hmacHeader string) bool

	// Shop API
	TestConnection(ctx context.Context, shop string, accessToken string) (*domain.ShopInfo, error)

	// Paginated collections
	Customers(shop string, accessToken string, opts PageOptions) Pager[domain.RemoteCustomer]
	Orders(shop string, accessToken string, opts PageOptions) Pager[domain.RemoteOrder]
	Products(shop string, accessToken string, opts PageOptions) Pager[domain.Product]
}

// WebhookDecoder turns webhook payloads into remote records
type WebhookDecoder interface {
	DecodeCustomer(payload []byte) (domain.RemoteCustomer, error)
	DecodeOrder(payload []byte) (domain.RemoteOrder, error)
}
