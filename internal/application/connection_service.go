package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

const (
	defaultProductsLimit = 50
	maxProductsLimit     = 250
)

// ConnectionStatus describes the health of an owner's store connection
type ConnectionStatus struct {
	Connected      bool             `json:"connected"`
	PlatformDomain string           `json:"platform_domain,omitempty"`
	ConnectedAt    *time.Time       `json:"connected_at,omitempty"`
	Shop           *domain.ShopInfo `json:"shop,omitempty"`
	Reason         string           `json:"reason,omitempty"`
}

// Status reasons
const (
	ReasonNotConnected    = "not_connected"
	ReasonTokenRevoked    = "token_revoked"
	ReasonShopUnreachable = "shop_unreachable"
)

// ConnectionService manages the owner's Shopify credential: OAuth,
// storage of the encrypted token and its lifecycle.
type ConnectionService struct {
	connections  ports.ConnectionRepository
	shopify      ports.ShopifyClient
	encryption   ports.EncryptionService
	integrations *IntegrationService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewConnectionService creates a new connection service
func NewConnectionService(
	connections ports.ConnectionRepository,
	shopify ports.ShopifyClient,
	encryption ports.EncryptionService,
	integrations *IntegrationService,
	logger zerolog.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections:  connections,
		shopify:      shopify,
		encryption:   encryption,
		integrations: integrations,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// AuthorizeURL normalizes shop and builds the Shopify install URL for it.
// It returns the normalized domain alongside the URL.
func (s *ConnectionService) AuthorizeURL(shop, state string) (string, string, error) {
	domainName := domain.NormalizeShopDomain(shop)
	if !domain.IsValidShopDomain(domainName) {
		return "", "", domain.ErrInvalidShopDomain
	}
	authURL, err := s.shopify.GenerateAuthURL(domainName, state)
	if err != nil {
		return "", "", fmt.Errorf("failed to build authorize url: %w", err)
	}
	return authURL, domainName, nil
}

// VerifyCallback checks the hmac Shopify signs callback query strings with
func (s *ConnectionService) VerifyCallback(u *url.URL) (bool, error) {
	return s.shopify.VerifyCallback(u)
}

// CompleteOAuth exchanges an authorization code and stores the resulting token
func (s *ConnectionService) CompleteOAuth(ctx context.Context, ownerID, shop, code string) (*domain.Connection, error) {
	domainName := domain.NormalizeShopDomain(shop)
	if !domain.IsValidShopDomain(domainName) {
		return nil, domain.ErrInvalidShopDomain
	}

	grant, err := s.shopify.ExchangeToken(ctx, domainName, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return s.Connect(ctx, ownerID, domainName, grant)
}

// Connect verifies the granted token, then stores it as the owner's only
// active connection and issues a fresh integration key.
func (s *ConnectionService) Connect(ctx context.Context, ownerID, shop string, grant *ports.TokenGrant) (*domain.Connection, error) {
	if grant == nil || grant.AccessToken == "" {
		return nil, fmt.Errorf("failed to connect %s: empty access token", shop)
	}

	info, err := s.shopify.TestConnection(ctx, shop, grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify access token: %w", err)
	}

	encrypted, err := s.encryption.Encrypt(grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	conn := &domain.Connection{
		OwnerID:        ownerID,
		Platform:       domain.PlatformShopify,
		PlatformDomain: shop,
		AccessToken:    encrypted,
		Scope:          grant.Scope,
		ConnectedAt:    s.now(),
		IsActive:       true,
	}
	if info != nil {
		conn.ShopName = info.Name
	}
	if err := s.connections.ReplaceActive(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to store connection: %w", err)
	}

	if s.integrations != nil {
		if _, err := s.integrations.IssueKey(ctx, ownerID, shop); err != nil {
			s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to issue integration key")
		}
	}

	s.logger.Info().
		Str("owner_id", ownerID).
		Str("shop_domain", shop).
		Str("connection_id", conn.ID).
		Msg("Shopify store connected")

	return conn, nil
}

// GetConnection returns the owner's active connection, or nil
func (s *ConnectionService) GetConnection(ctx context.Context, ownerID string) (*domain.Connection, error) {
	conn, err := s.connections.GetActive(ctx, ownerID, domain.PlatformShopify)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	return conn, nil
}

// Disconnect deactivates the owner's connection and revokes its integration key
func (s *ConnectionService) Disconnect(ctx context.Context, ownerID string) error {
	n, err := s.connections.Deactivate(ctx, ownerID, domain.PlatformShopify)
	if err != nil {
		return fmt.Errorf("failed to deactivate connection: %w", err)
	}
	if s.integrations != nil {
		if err := s.integrations.Revoke(ctx, ownerID); err != nil {
			return err
		}
	}

	s.logger.Info().Str("owner_id", ownerID).Int64("deactivated", n).Msg("Shopify store disconnected")
	return nil
}

// DeactivateByDomain deactivates every active connection to shop, for
// app/uninstalled webhooks.
func (s *ConnectionService) DeactivateByDomain(ctx context.Context, shop string) (int64, error) {
	n, err := s.connections.DeactivateByDomain(ctx, domain.PlatformShopify, shop)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate connections for %s: %w", shop, err)
	}
	s.logger.Info().Str("shop_domain", shop).Int64("deactivated", n).Msg("Deactivated connections for uninstalled shop")
	return n, nil
}

// OwnersForDomain lists the owners with an active connection to shop
func (s *ConnectionService) OwnersForDomain(ctx context.Context, shop string) ([]string, error) {
	conns, err := s.connections.ListActiveByDomain(ctx, domain.PlatformShopify, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections for %s: %w", shop, err)
	}
	owners := make([]string, 0, len(conns))
	for _, c := range conns {
		owners = append(owners, c.OwnerID)
	}
	return owners, nil
}

// Status checks the stored token against Shopify. A rejected token
// deactivates the connection.
func (s *ConnectionService) Status(ctx context.Context, ownerID string) (*ConnectionStatus, error) {
	conn, token, err := s.activeToken(ctx, ownerID)
	if errors.Is(err, domain.ErrNoActiveConnection) {
		return &ConnectionStatus{Reason: ReasonNotConnected}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &ConnectionStatus{
		Connected:      true,
		PlatformDomain: conn.PlatformDomain,
		ConnectedAt:    &conn.ConnectedAt,
	}

	info, err := s.shopify.TestConnection(ctx, conn.PlatformDomain, token)
	switch {
	case errors.Is(err, domain.ErrTokenRejected):
		s.revoke(ctx, ownerID)
		status.Connected = false
		status.Reason = ReasonTokenRevoked
	case err != nil:
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("Shopify status check failed")
		status.Reason = ReasonShopUnreachable
	default:
		status.Shop = info
	}
	return status, nil
}

// Products returns the first page of the connected store's catalog
func (s *ConnectionService) Products(ctx context.Context, ownerID string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultProductsLimit
	}
	limit = min(limit, maxProductsLimit)

	conn, token, err := s.activeToken(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pager := s.shopify.Products(conn.PlatformDomain, token, ports.PageOptions{PageSize: limit, MaxPages: 1})
	products, err := pager.Next(ctx)
	if errors.Is(err, io.EOF) {
		return []domain.Product{}, nil
	}
	if errors.Is(err, domain.ErrTokenRejected) {
		s.revoke(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *ConnectionService) activeToken(ctx context.Context, ownerID string) (*domain.Connection, string, error) {
	conn, err := s.GetConnection(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}
	if conn == nil {
		return nil, "", domain.ErrNoActiveConnection
	}
	token, err := s.encryption.Decrypt(conn.AccessToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return conn, token, nil
}

func (s *ConnectionService) revoke(ctx context.Context, ownerID string) {
	if _, err := s.connections.Deactivate(ctx, ownerID, domain.PlatformShopify); err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to deactivate revoked connection")
		return
	}
	s.logger.Warn().Str("owner_id", ownerID).Msg("Deactivated connection after Shopify rejected the token")
}
