package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

// IntegrationService handles integration key management
type IntegrationService struct {
	integrationRepo ports.IntegrationRepository
	logger          zerolog.Logger
	now             func() time.Time
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(
	integrationRepo ports.IntegrationRepository,
	logger zerolog.Logger,
) *IntegrationService {
	return &IntegrationService{
		integrationRepo: integrationRepo,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// IssueKey creates a fresh integration key for the owner, replacing any
// key issued earlier.
func (s *IntegrationService) IssueKey(ctx context.Context, ownerID, shopDomain string) (*domain.Integration, error) {
	if err := s.integrationRepo.DeleteByOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to revoke previous integration: %w", err)
	}

	// 32 bytes = 64 hex characters
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("failed to generate integration key: %w", err)
	}

	now := s.now()
	integration := &domain.Integration{
		Key:        hex.EncodeToString(keyBytes),
		OwnerID:    ownerID,
		ShopDomain: shopDomain,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.integrationRepo.Create(ctx, integration); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create integration")
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}

	s.logger.Info().
		Str("owner_id", ownerID).
		Str("shop_domain", shopDomain).
		Msg("Issued integration key")

	return integration, nil
}

// Resolve looks up an integration by key. It returns nil when the key is unknown.
func (s *IntegrationService) Resolve(ctx context.Context, key string) (*domain.Integration, error) {
	if key == "" {
		return nil, nil
	}
	integration, err := s.integrationRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return integration, nil
}

// GetByOwner returns the owner's current integration, or nil
func (s *IntegrationService) GetByOwner(ctx context.Context, ownerID string) (*domain.Integration, error) {
	integration, err := s.integrationRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return integration, nil
}

// Revoke deletes every integration key of the owner
func (s *IntegrationService) Revoke(ctx context.Context, ownerID string) error {
	if err := s.integrationRepo.DeleteByOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}

	s.logger.Info().Str("owner_id", ownerID).Msg("Revoked integration keys")
	return nil
}
