package domain

import (
	"strings"
	"time"
)

// Platform identifies the commerce platform a connection points at
type Platform string

const (
	PlatformShopify Platform = "shopify"
)

// Connection is an owner's stored credential for one platform.
// At most one connection per owner and platform is active at a time.
type Connection struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	Platform       Platform   `json:"platform"`
	PlatformDomain string     `json:"platform_domain"`
	AccessToken    string     `json:"-"` // encrypted at rest
	Scope          string     `json:"scope,omitempty"`
	ShopName       string     `json:"shop_name,omitempty"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DeactivatedAt  *time.Time `json:"deactivated_at,omitempty"`
	IsActive       bool       `json:"is_active"`
}

// NormalizeShopDomain turns a bare store name or URL into "<name>.myshopify.com"
func NormalizeShopDomain(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" {
		return ""
	}
	if !strings.HasSuffix(shop, ".myshopify.com") {
		shop += ".myshopify.com"
	}
	return shop
}

// IsValidShopDomain reports whether shop is a well-formed myshopify.com domain
func IsValidShopDomain(shop string) bool {
	name, ok := strings.CutSuffix(shop, ".myshopify.com")
	if !ok || name == "" || len(name) > 63 {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '-' && i > 0 && i < len(name)-1:
		default:
			return false
		}
	}
	return true
}
