package ports

import (
	"context"
	"errors"
	"time"

	"retentionos/internal/domain"
)

// EncryptionService encrypts credentials at rest
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SyncLocker serializes work per key across processes.
// Acquire blocks until the lock is held or ctx is done.
type SyncLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MetricsCache caches computed dashboard metrics per owner. Entries live under
// the owner's version; Invalidate moves to a new one. Callers read Version
// before loading rows and pass it to Set, so a result computed from rows that
// predate an invalidation is never served as current.
type MetricsCache interface {
	Version(ctx context.Context, ownerID string) (int64, error)
	Get(ctx context.Context, ownerID, key string, version int64, dest any) (bool, error)
	Set(ctx context.Context, ownerID, key string, version int64, value any) error
	Invalidate(ctx context.Context, ownerID string) error
}

// SyncMetrics records sync telemetry
type SyncMetrics interface {
	ObserveRun(status domain.SyncStatus, duration time.Duration)
	AddRecords(entity, outcome string, n int)
	IncFetchError(entity string)
}

// SyncEventPublisher fans sync progress out to listeners
type SyncEventPublisher interface {
	Publish(event domain.SyncEvent)
}

// SessionVerifier resolves a provider access token to a session
type SessionVerifier interface {
	Verify(ctx context.Context, accessToken string) (*domain.Session, error)
}

// ErrLockNotAcquired is returned by SyncLocker when ctx ends before the lock frees up
var ErrLockNotAcquired = errors.New("lock not acquired")
