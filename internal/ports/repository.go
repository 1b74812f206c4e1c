package ports

import (
	"context"

	"retentionos/internal/domain"
)

// ConnectionRepository persists platform credentials.
// Getters return nil, nil when nothing matches.
type ConnectionRepository interface {
	GetActive(ctx context.Context, ownerID string, platform domain.Platform) (*domain.Connection, error)
	ListActiveByDomain(ctx context.Context, platform domain.Platform, platformDomain string) ([]*domain.Connection, error)

	// ReplaceActive deactivates every active connection of the owner for the
	// platform and inserts conn as the single active one, atomically.
	ReplaceActive(ctx context.Context, conn *domain.Connection) error

	Deactivate(ctx context.Context, ownerID string, platform domain.Platform) (int64, error)
	DeactivateByDomain(ctx context.Context, platform domain.Platform, platformDomain string) (int64, error)
}

// CustomerRepository persists the local customer mirror
type CustomerRepository interface {
	FindBySourceID(ctx context.Context, ownerID string, sourceID int64) (*domain.Customer, error)
	Insert(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Customer, error)
}

// OrderRepository persists the local order mirror
type OrderRepository interface {
	FindBySourceID(ctx context.Context, ownerID string, sourceID int64) (*domain.Order, error)
	Insert(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error)
}

// SyncRunRepository persists the append-only sync audit trail
type SyncRunRepository interface {
	Create(ctx context.Context, run *domain.SyncRun) error

	// Finish writes the terminal state of a run that is still running
	Finish(ctx context.Context, run *domain.SyncRun) error

	Get(ctx context.Context, id string) (*domain.SyncRun, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.SyncRun, error)
}

// AccountSaltRepository stores the per-account email hashing salt
type AccountSaltRepository interface {
	// GetOrCreate returns the stored salt for the owner, storing candidate
	// first if the owner has none yet.
	GetOrCreate(ctx context.Context, ownerID string, candidate []byte) ([]byte, error)
}
