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

func (r *Reconciler) syncCustomers(ctx context.Context, scope *syncScope, log zerolog.Logger) (*domain.SyncResult, error) {
	res := &domain.SyncResult{}
	pager := r.Shopify.Customers(scope.shop, scope.token, ports.PageOptions{
		PageSize: r.cfg.PageSize,
		MaxPages: r.cfg.MaxPages,
	})

	for {
		page, err := pager.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.Metrics.IncFetchError("customers")
			return res, fmt.Errorf("failed to fetch customers: %w", err)
		}
		res.ShopifyCount += len(page)

		for _, remote := range page {
			outcome, err := r.applyCustomer(ctx, scope, remote)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.Warn().Err(err).Int64("source_id", remote.ID).Msg("Skipping customer")
				outcome = domain.OutcomeSkipped
			}
			res.Record(outcome)
		}
	}

	count, err := r.Customers.CountByOwner(ctx, scope.ownerID)
	if err != nil {
		return res, fmt.Errorf("failed to count customers: %w", err)
	}
	res.LocalCount = count
	r.recordOutcomes("customers", res)

	log.Info().
		Int("ingested", res.Ingested).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("shopify_count", res.ShopifyCount).
		Int64("local_count", res.LocalCount).
		Msg("Customers reconciled")

	return res, nil
}

// applyCustomer inserts, updates or skips one remote customer
func (r *Reconciler) applyCustomer(ctx context.Context, scope *syncScope, remote domain.RemoteCustomer) (domain.RecordOutcome, error) {
	if remote.ID <= 0 {
		return "", fmt.Errorf("%w: customer without id", domain.ErrMalformedRecord)
	}

	createdAt := normalizeTime(remote.CreatedAt)
	updatedAt := normalizeTime(remote.UpdatedAt)
	email := identity.HashEmail(remote.Email, scope.salt)

	incoming := &domain.Customer{
		OwnerAccountID:   scope.ownerID,
		SourceID:         remote.ID,
		SourceCreatedAt:  timeOrZero(createdAt),
		SourceUpdatedAt:  timeOrZero(updatedAt),
		EmailHash:        email.Hash,
		EmailSalt:        email.Salt,
		FirstName:        remote.FirstName,
		LastName:         remote.LastName,
		Phone:            remote.Phone,
		AcceptsMarketing: remote.AcceptsMarketing,
		TotalSpent:       remote.TotalSpent,
		OrdersCount:      remote.OrdersCount,
		SyncedAt:         r.now(),
	}
	if updatedAt == nil {
		incoming.SourceUpdatedAt = incoming.SourceCreatedAt
	}
	incoming.ContentHash = customerContentHash(incoming)

	existing, err := r.Customers.FindBySourceID(ctx, scope.ownerID, remote.ID)
	if err != nil {
		return "", err
	}

	if existing == nil {
		if err := r.Customers.Insert(ctx, incoming); err != nil {
			return "", err
		}
		scope.customerIDs[remote.ID] = incoming.ID
		return domain.OutcomeIngested, nil
	}

	scope.customerIDs[remote.ID] = existing.ID
	if !hasChanged(existing.SourceUpdatedAt, existing.ContentHash, updatedAt, incoming.ContentHash) {
		return domain.OutcomeSkipped, nil
	}

	incoming.ID = existing.ID
	if incoming.SourceCreatedAt.IsZero() {
		incoming.SourceCreatedAt = existing.SourceCreatedAt
	}
	if err := r.Customers.Update(ctx, incoming); err != nil {
		return "", err
	}
	return domain.OutcomeUpdated, nil
}
