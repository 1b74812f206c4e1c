package shopify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"access_token":"shpat_123","scope":"read_orders"}`)),
		Request:    req,
	}, nil
}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

func TestExchangeToken_WaitsOnShopRateLimit(t *testing.T) {
	transport := &recordingTransport{}
	c := NewClient(Config{APIKey: "key", APISecret: "secret"}, NewRateLimiter(0.001, 1), zerolog.Nop()).(*client)
	c.httpClient = &http.Client{Transport: transport}

	grant, err := c.ExchangeToken(context.Background(), "acme.myshopify.com", "code-1")
	require.NoError(t, err)
	assert.Equal(t, "shpat_123", grant.AccessToken)
	assert.Equal(t, "read_orders", grant.Scope)
	require.Equal(t, 1, transport.count())
	assert.Equal(t, "https://acme.myshopify.com/admin/oauth/access_token", transport.requests[0].URL.String())

	// the shop's only token is spent, so the next exchange cannot start in time
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ExchangeToken(ctx, "acme.myshopify.com", "code-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to exchange token")
	assert.Equal(t, 1, transport.count())

	// other shops have their own bucket
	_, err = c.ExchangeToken(context.Background(), "other.myshopify.com", "code-3")
	require.NoError(t, err)
	assert.Equal(t, 2, transport.count())
}
