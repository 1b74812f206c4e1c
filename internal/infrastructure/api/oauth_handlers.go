package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

// Callback error codes passed back to the dashboard
const (
	oauthErrMissingParams = "missing_params"
	oauthErrInvalidState  = "invalid_state"
	oauthErrInvalidHMAC   = "invalid_hmac"
	oauthErrInvalidShop   = "invalid_shop"
	oauthErrConnectFailed = "connect_failed"
)

// shopifyAuthHandler starts the OAuth install flow for the session owner
func shopifyAuthHandler(connections ConnectionManager, cookies *CookieSigner, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())

		shop := r.URL.Query().Get("shop")
		if shop == "" {
			writeError(w, http.StatusBadRequest, "shop parameter is required", nil)
			return
		}

		state, err := generateState()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to generate state")
			writeError(w, http.StatusInternalServerError, "Internal server error", nil)
			return
		}

		authURL, shopDomain, err := connections.AuthorizeURL(shop, state)
		if errors.Is(err, domain.ErrInvalidShopDomain) {
			writeError(w, http.StatusBadRequest, "Invalid shop domain", err)
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to build authorize URL")
			writeError(w, http.StatusInternalServerError, "Failed to start Shopify authorization", err)
			return
		}

		cookies.SetSigned(w, oauthStateCookie, state)
		cookies.SetSigned(w, oauthUserCookie, ownerID)

		logger.Info().Str("owner_id", ownerID).Str("shop", shopDomain).Msg("Starting Shopify OAuth")
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// shopifyCallbackHandler completes the install and redirects to the dashboard
func shopifyCallbackHandler(connections ConnectionManager, cookies *CookieSigner, siteURL string, logger zerolog.Logger) http.HandlerFunc {
	settingsURL := strings.TrimRight(siteURL, "/") + "/dashboard/settings"

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code, state, shop := q.Get("code"), q.Get("state"), q.Get("shop")

		storedState, stateOK := cookies.ReadSigned(r, oauthStateCookie)
		ownerID, ownerOK := cookies.ReadSigned(r, oauthUserCookie)
		cookies.Clear(w, oauthStateCookie)
		cookies.Clear(w, oauthUserCookie)

		fail := func(reason string) {
			http.Redirect(w, r, settingsURL+"?error="+url.QueryEscape(reason), http.StatusFound)
		}

		if code == "" || state == "" || shop == "" {
			fail(oauthErrMissingParams)
			return
		}
		if !stateOK || !ownerOK || ownerID == "" || storedState != state {
			logger.Warn().Str("shop", shop).Msg("OAuth state mismatch")
			fail(oauthErrInvalidState)
			return
		}
		if q.Has("hmac") {
			valid, err := connections.VerifyCallback(r.URL)
			if err != nil || !valid {
				logger.Warn().Err(err).Str("shop", shop).Msg("OAuth callback HMAC verification failed")
				fail(oauthErrInvalidHMAC)
				return
			}
		}

		conn, err := connections.CompleteOAuth(r.Context(), ownerID, shop, code)
		if errors.Is(err, domain.ErrInvalidShopDomain) {
			fail(oauthErrInvalidShop)
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("owner_id", ownerID).Str("shop", shop).Msg("Failed to complete Shopify OAuth")
			fail(oauthErrConnectFailed)
			return
		}

		logger.Info().
			Str("owner_id", ownerID).
			Str("shop", conn.PlatformDomain).
			Msg("Redirecting to dashboard after successful OAuth")
		http.Redirect(w, r, settingsURL+"?success=shopify_connected", http.StatusFound)
	}
}

// generateState returns a random CSRF token for the OAuth round trip
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
