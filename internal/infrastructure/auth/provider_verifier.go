package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

// ProviderVerifier validates dashboard access tokens against the hosted
// auth provider's user endpoint.
type ProviderVerifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ ports.SessionVerifier = (*ProviderVerifier)(nil)

// NewProviderVerifier creates a verifier for the provider at baseURL.
// httpClient may be nil.
func NewProviderVerifier(baseURL, apiKey string, httpClient *http.Client, logger zerolog.Logger) *ProviderVerifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ProviderVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify resolves accessToken to a session. Rejected tokens return domain.ErrUnauthorized.
func (v *ProviderVerifier) Verify(ctx context.Context, accessToken string) (*domain.Session, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("auth provider returned status %d", resp.StatusCode)
	}

	var user providerUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode auth provider user: %w", err)
	}
	if user.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Session{UserID: user.ID, Email: user.Email}, nil
}
