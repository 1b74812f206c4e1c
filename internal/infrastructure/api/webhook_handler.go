package api

import (
	"io"
	"net/http"
	"time"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

const maxWebhookBody = 1 << 20

// webhookHandler verifies and dispatches Shopify webhook deliveries
func webhookHandler(verifier WebhookVerifier, dispatcher WebhookDispatcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			logger.Warn().Msg("Missing X-Shopify-Topic header")
			writeError(w, http.StatusBadRequest, "Missing X-Shopify-Topic header", nil)
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook payload")
			writeError(w, http.StatusBadRequest, "Failed to read request body", nil)
			return
		}
		defer r.Body.Close()

		if !verifier.VerifyWebhook(payload, r.Header.Get("X-Shopify-Hmac-Sha256")) {
			logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
			writeError(w, http.StatusUnauthorized, "Invalid signature", nil)
			return
		}

		event := &domain.WebhookEvent{
			ID:         r.Header.Get("X-Shopify-Webhook-Id"),
			Topic:      topic,
			Shop:       r.Header.Get("X-Shopify-Shop-Domain"),
			Payload:    payload,
			ReceivedAt: time.Now().UTC(),
		}

		handled, err := dispatcher.Dispatch(r.Context(), event)
		if err != nil {
			logger.Error().
				Err(err).
				Str("topic", topic).
				Str("shop", event.Shop).
				Msg("Failed to dispatch webhook event")

			// Shopify retries on non-2xx
			writeError(w, http.StatusInternalServerError, "Failed to process webhook event", nil)
			return
		}
		if !handled {
			logger.Debug().Str("topic", topic).Msg("No handler for webhook topic")
		}

		writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
	}
}
