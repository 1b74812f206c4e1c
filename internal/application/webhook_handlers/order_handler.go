package webhook_handlers

import (
	"context"
	"fmt"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

// OrderHandler mirrors pushed order records
type OrderHandler struct {
	logger  zerolog.Logger
	owners  OwnerResolver
	applier RecordApplier
	decoder ports.WebhookDecoder
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(logger zerolog.Logger, owners OwnerResolver, applier RecordApplier, decoder ports.WebhookDecoder) *OrderHandler {
	return &OrderHandler{
		logger:  logger,
		owners:  owners,
		applier: applier,
		decoder: decoder,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	switch topic {
	case "orders/create", "orders/updated", "orders/paid", "orders/cancelled", "orders/fulfilled":
		return true
	}
	return false
}

// Handle reconciles the order for every owner connected to the shop
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	order, err := h.decoder.DecodeOrder(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse order webhook payload: %w", err)
	}

	return forEachOwner(ctx, h.owners, event.Shop, func(ownerID string) error {
		outcome, err := h.applier.ApplyOrder(ctx, ownerID, order)
		if err != nil {
			return fmt.Errorf("failed to apply order %d for %s: %w", order.ID, ownerID, err)
		}
		h.logger.Info().
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Str("owner_id", ownerID).
			Int64("order_id", order.ID).
			Str("financial_status", order.FinancialStatus).
			Str("outcome", string(outcome)).
			Msg("Processed order webhook")
		return nil
	})
}
