package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

const sseHeartbeat = 25 * time.Second

// syncEventsHandler streams the owner's sync progress as server-sent events
func syncEventsHandler(bus *pubsub.SyncEventBus, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
			return
		}
		ownerID := domain.GetOwnerIDFromContext(r.Context())

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		sub := bus.Subscribe(r.Context(), ownerID)
		defer sub.Close()

		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case ev, ok := <-sub.Events:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					logger.Error().Err(err).Str("sync_id", ev.SyncID).Msg("Failed to encode sync event")
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Stage, data)
				flusher.Flush()
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}
