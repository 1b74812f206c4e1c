package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"retentionos/internal/domain"
	"retentionos/internal/identity"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

func (r *Reconciler) syncOrders(ctx context.Context, scope *syncScope, log zerolog.Logger) (*domain.SyncResult, error) {
	res := &domain.SyncResult{}
	pager := r.Shopify.Orders(scope.shop, scope.token, ports.PageOptions{
		PageSize: r.cfg.PageSize,
		MaxPages: r.cfg.MaxPages,
	})

	for {
		page, err := pager.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.Metrics.IncFetchError("orders")
			return res, fmt.Errorf("failed to fetch orders: %w", err)
		}
		res.ShopifyCount += len(page)

		for _, remote := range page {
			outcome, err := r.applyOrder(ctx, scope, remote)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.Warn().Err(err).Int64("source_id", remote.ID).Msg("Skipping order")
				outcome = domain.OutcomeSkipped
			}
			res.Record(outcome)
		}
	}

	count, err := r.Orders.CountByOwner(ctx, scope.ownerID)
	if err != nil {
		return res, fmt.Errorf("failed to count orders: %w", err)
	}
	res.LocalCount = count
	r.recordOutcomes("orders", res)

	log.Info().
		Int("ingested", res.Ingested).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("shopify_count", res.ShopifyCount).
		Int64("local_count", res.LocalCount).
		Msg("Orders reconciled")

	return res, nil
}

// applyOrder inserts, updates or skips one remote order. The comparison
// marker is the order's own updated_at, so status changes after creation
// are picked up.
func (r *Reconciler) applyOrder(ctx context.Context, scope *syncScope, remote domain.RemoteOrder) (domain.RecordOutcome, error) {
	if remote.ID <= 0 {
		return "", fmt.Errorf("%w: order without id", domain.ErrMalformedRecord)
	}

	customerID, err := r.resolveCustomer(ctx, scope, remote.CustomerSourceID)
	if err != nil {
		return "", err
	}

	createdAt := normalizeTime(remote.CreatedAt)
	updatedAt := normalizeTime(remote.UpdatedAt)

	incoming := &domain.Order{
		OwnerAccountID:    scope.ownerID,
		CustomerID:        customerID,
		SourceID:          remote.ID,
		OrderNumber:       remote.OrderNumber,
		SourceCreatedAt:   timeOrZero(createdAt),
		SourceUpdatedAt:   timeOrZero(updatedAt),
		FinancialStatus:   remote.FinancialStatus,
		SubtotalPrice:     remote.SubtotalPrice,
		TotalPrice:        remote.TotalPrice,
		TotalTax:          remote.TotalTax,
		Currency:          remote.Currency,
		CustomerEmailHash: identity.HashEmail(remote.Email, scope.salt).Hash,
		LineItems:         remote.LineItems,
		SyncedAt:          r.now(),
	}
	if updatedAt == nil {
		incoming.SourceUpdatedAt = incoming.SourceCreatedAt
	}
	incoming.ContentHash = orderContentHash(incoming, remote.CustomerSourceID)

	existing, err := r.Orders.FindBySourceID(ctx, scope.ownerID, remote.ID)
	if err != nil {
		return "", err
	}

	if existing == nil {
		if err := r.Orders.Insert(ctx, incoming); err != nil {
			return "", err
		}
		return domain.OutcomeIngested, nil
	}

	relinked := existing.CustomerID != customerID
	if !relinked && !hasChanged(existing.SourceUpdatedAt, existing.ContentHash, updatedAt, incoming.ContentHash) {
		return domain.OutcomeSkipped, nil
	}

	incoming.ID = existing.ID
	if incoming.SourceCreatedAt.IsZero() {
		incoming.SourceCreatedAt = existing.SourceCreatedAt
	}
	if err := r.Orders.Update(ctx, incoming); err != nil {
		return "", err
	}
	return domain.OutcomeUpdated, nil
}

// resolveCustomer maps a remote customer id to the local surrogate id.
// It returns "" when the order has no customer or the customer is not mirrored.
func (r *Reconciler) resolveCustomer(ctx context.Context, scope *syncScope, sourceID int64) (string, error) {
	if sourceID <= 0 {
		return "", nil
	}
	if id, ok := scope.customerIDs[sourceID]; ok {
		return id, nil
	}

	customer, err := r.Customers.FindBySourceID(ctx, scope.ownerID, sourceID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve customer %d: %w", sourceID, err)
	}
	id := ""
	if customer != nil {
		id = customer.ID
	}
	scope.customerIDs[sourceID] = id
	return id, nil
}
