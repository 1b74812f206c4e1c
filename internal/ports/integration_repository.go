package ports

import (
	"context"

	"retentionos/internal/domain"
)

// IntegrationRepository defines the interface for integration key persistence
type IntegrationRepository interface {
	// Create creates a new integration
	Create(ctx context.Context, integration *domain.Integration) error

	// GetByKey retrieves an integration by its key
	GetByKey(ctx context.Context, key string) (*domain.Integration, error)

	// GetByOwner retrieves the integration issued to an owner
	GetByOwner(ctx context.Context, ownerID string) (*domain.Integration, error)

	// DeleteByOwner removes every integration issued to an owner
	DeleteByOwner(ctx context.Context, ownerID string) error
}
