package api

import (
	"errors"
	"net/http"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

func disconnectHandler(connections ConnectionManager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())
		if err := connections.Disconnect(r.Context(), ownerID); err != nil {
			logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to disconnect Shopify")
			writeError(w, http.StatusInternalServerError, "Failed to disconnect", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func statusHandler(connections ConnectionManager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())
		status, err := connections.Status(r.Context(), ownerID)
		if err != nil {
			logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to check Shopify status")
			writeError(w, http.StatusInternalServerError, "Failed to check connection", err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func productsHandler(connections ConnectionManager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())
		products, err := connections.Products(r.Context(), ownerID, queryInt(r, "limit", 50, 250))
		switch {
		case errors.Is(err, domain.ErrNoActiveConnection):
			writeError(w, http.StatusNotFound, "No active Shopify connection", err)
			return
		case errors.Is(err, domain.ErrTokenRejected):
			writeError(w, http.StatusUnauthorized, "Shopify access revoked", err)
			return
		case err != nil:
			logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to fetch products")
			writeError(w, http.StatusInternalServerError, "Failed to fetch products", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	}
}
