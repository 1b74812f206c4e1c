package webhook_handlers

import (
	"context"
	"fmt"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerHandler mirrors pushed customer records
type CustomerHandler struct {
	logger  zerolog.Logger
	owners  OwnerResolver
	applier RecordApplier
	decoder ports.WebhookDecoder
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(logger zerolog.Logger, owners OwnerResolver, applier RecordApplier, decoder ports.WebhookDecoder) *CustomerHandler {
	return &CustomerHandler{
		logger:  logger,
		owners:  owners,
		applier: applier,
		decoder: decoder,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == "customers/create" || topic == "customers/update"
}

// Handle reconciles the customer for every owner connected to the shop
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	customer, err := h.decoder.DecodeCustomer(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse customer webhook payload: %w", err)
	}

	return forEachOwner(ctx, h.owners, event.Shop, func(ownerID string) error {
		outcome, err := h.applier.ApplyCustomer(ctx, ownerID, customer)
		if err != nil {
			return fmt.Errorf("failed to apply customer %d for %s: %w", customer.ID, ownerID, err)
		}
		h.logger.Info().
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Str("owner_id", ownerID).
			Int64("customer_id", customer.ID).
			Str("outcome", string(outcome)).
			Msg("Processed customer webhook")
		return nil
	})
}
