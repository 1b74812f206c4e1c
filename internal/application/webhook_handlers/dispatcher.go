package webhook_handlers

import (
	"context"
	"errors"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

// Handler processes webhook events for the topics it accepts
type Handler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// OwnerResolver finds the owners connected to a shop
type OwnerResolver interface {
	OwnersForDomain(ctx context.Context, shop string) ([]string, error)
}

// RecordApplier reconciles single pushed records
type RecordApplier interface {
	ApplyCustomer(ctx context.Context, ownerID string, remote domain.RemoteCustomer) (domain.RecordOutcome, error)
	ApplyOrder(ctx context.Context, ownerID string, remote domain.RemoteOrder) (domain.RecordOutcome, error)
}

// Dispatcher routes a verified webhook to the first handler that accepts its topic
type Dispatcher struct {
	handlers []Handler
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over handlers
func NewDispatcher(logger zerolog.Logger, handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Dispatch handles event. Unknown topics are acknowledged and reported as not handled.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	for _, h := range d.handlers {
		if h.CanHandle(event.Topic) {
			return true, h.Handle(ctx, event)
		}
	}
	d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("Ignoring webhook topic")
	return false, nil
}

// forEachOwner runs fn for every owner connected to shop and joins the failures
func forEachOwner(ctx context.Context, resolver OwnerResolver, shop string, fn func(ownerID string) error) error {
	owners, err := resolver.OwnersForDomain(ctx, shop)
	if err != nil {
		return err
	}
	var errs []error
	for _, ownerID := range owners {
		if err := fn(ownerID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
