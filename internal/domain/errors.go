package domain

import "errors"

var (
	ErrNoActiveConnection = errors.New("no active Shopify connection found")
	ErrSyncInProgress     = errors.New("a sync is already running for this account")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidShopDomain  = errors.New("invalid shop domain")
	ErrMalformedRecord    = errors.New("malformed record")
)

// Remote platform failures
var (
	ErrTokenRejected = errors.New("access token rejected by Shopify")
	ErrRateLimited   = errors.New("rate limited by Shopify")
)
