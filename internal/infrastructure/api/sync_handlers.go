package api

import (
	"errors"
	"net/http"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
)

// syncResponse is the body of a successful sync trigger
type syncResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    domain.SyncOutcome `json:"data"`
}

// syncHandler runs a full reconciliation for the session owner
func syncHandler(sync SyncRunner, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())

		outcome, err := sync.Run(r.Context(), ownerID)
		if errors.Is(err, domain.ErrSyncInProgress) {
			writeError(w, http.StatusConflict, "Sync already in progress", err)
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("owner_id", ownerID).Msg("Shopify sync failed")
			writeError(w, http.StatusInternalServerError, "Sync failed", err)
			return
		}

		writeJSON(w, http.StatusOK, syncResponse{
			Success: true,
			Message: "Shopify data synced successfully",
			Data:    *outcome,
		})
	}
}

// syncRunsHandler lists the owner's recent sync audit records
func syncRunsHandler(sync SyncRunner, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())

		runs, err := sync.Runs(r.Context(), ownerID, queryInt(r, "limit", 20, 100))
		if err != nil {
			logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to list sync runs")
			writeError(w, http.StatusInternalServerError, "Failed to list sync runs", err)
			return
		}
		if runs == nil {
			runs = []*domain.SyncRun{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}
