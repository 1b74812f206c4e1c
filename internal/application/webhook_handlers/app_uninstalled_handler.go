package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

// ShopDeactivator deactivates every connection to a shop
type ShopDeactivator interface {
	DeactivateByDomain(ctx context.Context, shop string) (int64, error)
}

// AppUninstalledHandler handles app uninstalled webhook events
type AppUninstalledHandler struct {
	logger      zerolog.Logger
	deactivator ShopDeactivator
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, deactivator ShopDeactivator) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:      logger,
		deactivator: deactivator,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle deactivates the shop's connections. The token is already revoked
// by Shopify at this point; mirrored rows are kept.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var shopData struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
		shopDomain = shopData.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = shopData.Domain
		}
	}
	if shopDomain == "" {
		return fmt.Errorf("app uninstalled webhook without shop domain")
	}

	n, err := h.deactivator.DeactivateByDomain(ctx, domain.NormalizeShopDomain(shopDomain))
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("shop", shopDomain).
		Int64("deactivated", n).
		Msg("App uninstalled - connections deactivated")
	return nil
}
