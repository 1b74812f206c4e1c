package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Config holds the app credentials and client tuning
type Config struct {
	APIKey      string
	APISecret   string
	RedirectURL string
	Scopes      string
	APIVersion  string
	Retries     int
	HTTPTimeout time.Duration
}

type client struct {
	app         goshopify.App
	apiVersion  string
	retries     int
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(cfg Config, rateLimiter *RateLimiter, logger zerolog.Logger) ports.ShopifyClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		app: goshopify.App{
			ApiKey:      cfg.APIKey,
			ApiSecret:   cfg.APISecret,
			RedirectUrl: cfg.RedirectURL,
			Scope:       cfg.Scopes,
		},
		apiVersion:  cfg.APIVersion,
		retries:     cfg.Retries,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	opts := []goshopify.Option{}
	if c.apiVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.apiVersion))
	}
	if c.retries > 0 {
		opts = append(opts, goshopify.WithRetry(c.retries))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, state string) (string, error) {
	authURL, err := c.app.AuthorizeUrl(shop, state)
	if err != nil {
		return "", fmt.Errorf("failed to build authorization url: %w", err)
	}

	c.logger.Info().
		Str("shop", shop).
		Str("scopes", c.app.Scope).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

// ExchangeToken trades an authorization code for an offline access token
func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (*ports.TokenGrant, error) {
	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)

	values := url.Values{}
	values.Set("client_id", c.app.ApiKey)
	values.Set("client_secret", c.app.ApiSecret)
	values.Set("code", code)

	if err := c.rateLimiter.Wait(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, fmt.Errorf("failed to exchange token: empty access token")
	}

	return &ports.TokenGrant{AccessToken: tokenResponse.AccessToken, Scope: tokenResponse.Scope}, nil
}

// VerifyCallback checks the hmac query parameter Shopify signs callbacks with
func (c *client) VerifyCallback(u *url.URL) (bool, error) {
	return c.app.VerifyAuthorizationURL(u)
}

// VerifyWebhook checks the X-Shopify-Hmac-Sha256 header against the raw body
func (c *client) VerifyWebhook(payload []byte, hmacHeader string) bool {
	if hmacHeader == "" {
		return false
	}
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("X-Shopify-Hmac-Sha256", hmacHeader)
	return c.app.VerifyWebhookRequest(req)
}

// Shop API

func (c *client) TestConnection(ctx context.Context, shopDomain string, accessToken string) (*domain.ShopInfo, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx, shopDomain); err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, classifyError("get shop", err)
	}
	return shopInfoFromShopify(shop), nil
}

// Paginated collections

func (c *client) Customers(shopDomain string, accessToken string, opts ports.PageOptions) ports.Pager[domain.RemoteCustomer] {
	first := c.listOptions(opts)
	return &cursorPager[goshopify.Customer, domain.RemoteCustomer]{
		shop:     shopDomain,
		resource: "customers",
		first:    first,
		list: func() (listFunc[goshopify.Customer], error) {
			client, err := c.createClient(shopDomain, accessToken)
			if err != nil {
				return nil, err
			}
			return client.Customer.ListWithPagination, nil
		},
		convert:  customerFromShopify,
		limiter:  c.rateLimiter,
		maxPages: opts.MaxPages,
	}
}

func (c *client) Orders(shopDomain string, accessToken string, opts ports.PageOptions) ports.Pager[domain.RemoteOrder] {
	// Shopify lists only open orders unless asked for every status
	first := goshopify.OrderListOptions{
		ListOptions: c.listOptions(opts),
		Status:      goshopify.OrderStatusAny,
	}
	return &cursorPager[goshopify.Order, domain.RemoteOrder]{
		shop:     shopDomain,
		resource: "orders",
		first:    first,
		list: func() (listFunc[goshopify.Order], error) {
			client, err := c.createClient(shopDomain, accessToken)
			if err != nil {
				return nil, err
			}
			return client.Order.ListWithPagination, nil
		},
		convert:  orderFromShopify,
		limiter:  c.rateLimiter,
		maxPages: opts.MaxPages,
	}
}

func (c *client) Products(shopDomain string, accessToken string, opts ports.PageOptions) ports.Pager[domain.Product] {
	first := c.listOptions(opts)
	return &cursorPager[goshopify.Product, domain.Product]{
		shop:     shopDomain,
		resource: "products",
		first:    first,
		list: func() (listFunc[goshopify.Product], error) {
			client, err := c.createClient(shopDomain, accessToken)
			if err != nil {
				return nil, err
			}
			return client.Product.ListWithPagination, nil
		},
		convert:  productFromShopify,
		limiter:  c.rateLimiter,
		maxPages: opts.MaxPages,
	}
}

func (c *client) listOptions(opts ports.PageOptions) goshopify.ListOptions {
	lo := goshopify.ListOptions{Limit: clampPageSize(opts.PageSize)}
	if opts.UpdatedAtMin != nil {
		lo.UpdatedAtMin = *opts.UpdatedAtMin
	}
	return lo
}
