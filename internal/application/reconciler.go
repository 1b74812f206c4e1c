package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/identity"
	"retentionos/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReconcilerConfig tunes a sync run
type ReconcilerConfig struct {
	PageSize        int           // records per remote page
	MaxPages        int           // 0 follows the cursor to the end
	Timeout         time.Duration // bound on one full run
	LockWait        time.Duration // how long a trigger waits for a running sync
	WebhookLockWait time.Duration
}

// ReconcilerDeps are the ports a Reconciler drives
type ReconcilerDeps struct {
	Connections ports.ConnectionRepository
	Customers   ports.CustomerRepository
	Orders      ports.OrderRepository
	SyncRuns    ports.SyncRunRepository
	Salts       ports.AccountSaltRepository
	Shopify     ports.ShopifyClient
	Encryption  ports.EncryptionService
	Locker      ports.SyncLocker
	Cache       ports.MetricsCache
	Metrics     ports.SyncMetrics
	Events      ports.SyncEventPublisher
}

// Reconciler mirrors an owner's remote customers and orders into local storage
type Reconciler struct {
	ReconcilerDeps
	cfg    ReconcilerConfig
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewReconciler creates a reconciler. Metrics, Events and Cache may be nil.
func NewReconciler(deps ReconcilerDeps, cfg ReconcilerConfig, logger zerolog.Logger) *Reconciler {
	if deps.Metrics == nil {
		deps.Metrics = nopSyncMetrics{}
	}
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	if deps.Cache == nil {
		deps.Cache = nopCache{}
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 30 * time.Second
	}
	if cfg.WebhookLockWait <= 0 {
		cfg.WebhookLockWait = 3 * time.Second
	}
	return &Reconciler{
		ReconcilerDeps: deps,
		cfg:            cfg,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          uuid.NewString,
	}
}

// syncScope carries what every record of one owner needs
type syncScope struct {
	ownerID string
	shop    string
	token   string
	salt    []byte

	// source customer id -> local id ("" when unknown)
	customerIDs map[int64]string
}

func newSyncScope(ownerID string, salt []byte) *syncScope {
	return &syncScope{ownerID: ownerID, salt: salt, customerIDs: make(map[int64]string)}
}

// Run reconciles customers, then orders, for ownerID. Every call that gets
// past the lock leaves exactly one finished SyncRun behind.
func (r *Reconciler) Run(ctx context.Context, ownerID string) (*domain.SyncOutcome, error) {
	release, err := r.acquire(ctx, ownerID, r.cfg.LockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	run := domain.NewSyncRun(r.newID(), ownerID, domain.SyncTypeFull, r.now())
	if err := r.SyncRuns.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to start sync run: %w", err)
	}

	log := r.logger.With().Str("owner_id", ownerID).Str("sync_id", run.ID).Logger()
	log.Info().Msg("Sync started")
	r.publish(run, domain.SyncStageStarted, nil, nil)

	customers, orders, err := r.reconcile(ctx, run, log)
	if err != nil {
		r.fail(ctx, run, err, customers, orders, log)
		return nil, err
	}

	run.Complete(*customers, *orders, r.now())
	if err := r.finish(ctx, run); err != nil {
		log.Error().Err(err).Msg("Failed to record sync completion")
		return nil, err
	}
	r.Metrics.ObserveRun(run.Status, run.CompletedAt.Sub(run.StartedAt))
	r.publish(run, domain.SyncStageFinished, nil, nil)

	if err := r.Cache.Invalidate(ctx, ownerID); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate metrics cache")
	}

	log.Info().
		Int("ingested", run.RowsIngested).
		Int("updated", run.RowsUpdated).
		Int("skipped", run.RowsSkipped).
		Int("shopify_count", run.ShopifyCount).
		Msg("Sync completed")

	return &domain.SyncOutcome{SyncID: run.ID, Customers: *customers, Orders: *orders}, nil
}

// Runs lists the owner's recent sync audit records
func (r *Reconciler) Runs(ctx context.Context, ownerID string, limit int) ([]*domain.SyncRun, error) {
	runs, err := r.SyncRuns.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

func (r *Reconciler) reconcile(ctx context.Context, run *domain.SyncRun, log zerolog.Logger) (*domain.SyncResult, *domain.SyncResult, error) {
	scope, err := r.openScope(ctx, run.OwnerAccountID)
	if err != nil {
		return nil, nil, err
	}

	customers, err := r.syncCustomers(ctx, scope, log)
	if err != nil {
		return customers, nil, err
	}
	r.publish(run, domain.SyncStageCustomers, customers, nil)

	orders, err := r.syncOrders(ctx, scope, log)
	if err != nil {
		return customers, orders, err
	}
	r.publish(run, domain.SyncStageOrders, orders, nil)

	return customers, orders, nil
}

// openScope builds an authenticated scope from the owner's active connection
func (r *Reconciler) openScope(ctx context.Context, ownerID string) (*syncScope, error) {
	conn, err := r.Connections.GetActive(ctx, ownerID, domain.PlatformShopify)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return nil, domain.ErrNoActiveConnection
	}

	token, err := r.Encryption.Decrypt(conn.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	salt, err := r.accountSalt(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	scope := newSyncScope(ownerID, salt)
	scope.shop = conn.PlatformDomain
	scope.token = token
	return scope, nil
}

func (r *Reconciler) accountSalt(ctx context.Context, ownerID string) ([]byte, error) {
	candidate, err := identity.NewSalt()
	if err != nil {
		return nil, err
	}
	salt, err := r.Salts.GetOrCreate(ctx, ownerID, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to load account salt: %w", err)
	}
	return salt, nil
}

func (r *Reconciler) acquire(ctx context.Context, ownerID string, wait time.Duration) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	release, err := r.Locker.Acquire(lockCtx, "sync:"+ownerID)
	if errors.Is(err, ports.ErrLockNotAcquired) {
		return nil, domain.ErrSyncInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	return release, nil
}

// finish writes the terminal state even if ctx was cancelled mid-run
func (r *Reconciler) finish(ctx context.Context, run *domain.SyncRun) error {
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return r.SyncRuns.Finish(finishCtx, run)
}

func (r *Reconciler) fail(ctx context.Context, run *domain.SyncRun, cause error, customers, orders *domain.SyncResult, log zerolog.Logger) {
	log.Error().Err(cause).Msg("Sync failed")

	run.Fail(cause, customers, orders, r.now())
	if err := r.finish(ctx, run); err != nil {
		log.Error().Err(err).Msg("Failed to record sync failure")
	}
	r.Metrics.ObserveRun(run.Status, run.CompletedAt.Sub(run.StartedAt))
	r.publish(run, domain.SyncStageFinished, nil, cause)

	if errors.Is(cause, domain.ErrTokenRejected) {
		deactivateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if _, err := r.Connections.Deactivate(deactivateCtx, run.OwnerAccountID, domain.PlatformShopify); err != nil {
			log.Error().Err(err).Msg("Failed to deactivate revoked connection")
		} else {
			log.Warn().Msg("Deactivated connection after Shopify rejected the token")
		}
	}
}

func (r *Reconciler) publish(run *domain.SyncRun, stage domain.SyncStage, result *domain.SyncResult, err error) {
	ev := domain.SyncEvent{
		SyncID:  run.ID,
		OwnerID: run.OwnerAccountID,
		Stage:   stage,
		Status:  run.Status,
		Result:  result,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	r.Events.Publish(ev)
}

func (r *Reconciler) recordOutcomes(entity string, res *domain.SyncResult) {
	r.Metrics.AddRecords(entity, string(domain.OutcomeIngested), res.Ingested)
	r.Metrics.AddRecords(entity, string(domain.OutcomeUpdated), res.Updated)
	r.Metrics.AddRecords(entity, string(domain.OutcomeSkipped), res.Skipped)
}

type nopSyncMetrics struct{}

func (nopSyncMetrics) ObserveRun(domain.SyncStatus, time.Duration) {}
func (nopSyncMetrics) AddRecords(string, string, int)              {}
func (nopSyncMetrics) IncFetchError(string)                        {}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.SyncEvent) {}

type nopCache struct{}

func (nopCache) Version(context.Context, string) (int64, error)                { return 0, nil }
func (nopCache) Get(context.Context, string, string, int64, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, string, int64, any) error         { return nil }
func (nopCache) Invalidate(context.Context, string) error                      { return nil }
