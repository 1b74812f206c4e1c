package application

import (
	"context"

	"retentionos/internal/domain"
)

// ApplyCustomer reconciles a single pushed customer, e.g. from a webhook.
// It shares the per-owner lock with full syncs.
func (r *Reconciler) ApplyCustomer(ctx context.Context, ownerID string, remote domain.RemoteCustomer) (domain.RecordOutcome, error) {
	return r.applyOne(ctx, ownerID, "customers", func(scope *syncScope) (domain.RecordOutcome, error) {
		return r.applyCustomer(ctx, scope, remote)
	})
}

// ApplyOrder reconciles a single pushed order
func (r *Reconciler) ApplyOrder(ctx context.Context, ownerID string, remote domain.RemoteOrder) (domain.RecordOutcome, error) {
	return r.applyOne(ctx, ownerID, "orders", func(scope *syncScope) (domain.RecordOutcome, error) {
		return r.applyOrder(ctx, scope, remote)
	})
}

func (r *Reconciler) applyOne(ctx context.Context, ownerID, entity string, apply func(*syncScope) (domain.RecordOutcome, error)) (domain.RecordOutcome, error) {
	release, err := r.acquire(ctx, ownerID, r.cfg.WebhookLockWait)
	if err != nil {
		return "", err
	}
	defer release()

	salt, err := r.accountSalt(ctx, ownerID)
	if err != nil {
		return "", err
	}

	outcome, err := apply(newSyncScope(ownerID, salt))
	if err != nil {
		return "", err
	}
	r.Metrics.AddRecords(entity, string(outcome), 1)

	if outcome != domain.OutcomeSkipped {
		if err := r.Cache.Invalidate(ctx, ownerID); err != nil {
			r.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("Failed to invalidate metrics cache")
		}
	}
	return outcome, nil
}
