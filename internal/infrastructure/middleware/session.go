// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

// AccessTokenCookie is the cookie the dashboard stores the provider token in
const AccessTokenCookie = "sb-access-token"

// IntegrationResolver looks up server-to-server integration keys
type IntegrationResolver interface {
	Resolve(ctx context.Context, key string) (*domain.Integration, error)
}

// SessionMiddleware authenticates the request and stores the owner id in
// the context. An X-Integration-Key header is tried first, then a bearer
// token or the access token cookie. Unauthenticated requests get 401.
func SessionMiddleware(integrations IntegrationResolver, verifier ports.SessionVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if key := r.Header.Get("X-Integration-Key"); key != "" && integrations != nil {
				integration, err := integrations.Resolve(ctx, key)
				if err != nil {
					logger.Error().Err(err).Msg("Failed to resolve integration key")
				}
				if integration == nil {
					unauthorized(w)
					return
				}
				logger.Debug().
					Str("owner_id", integration.OwnerID).
					Str("shop_domain", integration.ShopDomain).
					Msg("Authenticated using integration key")
				next.ServeHTTP(w, r.WithContext(domain.WithOwnerID(ctx, integration.OwnerID)))
				return
			}

			token := accessToken(r)
			if token == "" {
				unauthorized(w)
				return
			}
			session, err := verifier.Verify(ctx, token)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					logger.Error().Err(err).Msg("Failed to verify access token")
				}
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithOwnerID(ctx, session.UserID)))
		})
	}
}

func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
