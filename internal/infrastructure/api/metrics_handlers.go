package api

import (
	"context"
	"net/http"

	"retentionos/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// metricHandler serves one dashboard metric computed for the session owner
func metricHandler[T any](name string, logger zerolog.Logger, compute func(ctx context.Context, ownerID string, r *http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := domain.GetOwnerIDFromContext(r.Context())
		result, err := compute(r.Context(), ownerID, r)
		if err != nil {
			logger.Error().Err(err).Str("owner_id", ownerID).Str("metric", name).Msg("Failed to compute metric")
			writeError(w, http.StatusInternalServerError, "Failed to compute "+name, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// mountMetrics registers the dashboard metric endpoints on r
func mountMetrics(r chi.Router, m MetricsReader, logger zerolog.Logger) {
	r.Get("/overview", metricHandler("overview", logger, func(ctx context.Context, owner string, _ *http.Request) (any, error) {
		return m.Overview(ctx, owner)
	}))
	r.Get("/cohorts", metricHandler("cohorts", logger, func(ctx context.Context, owner string, req *http.Request) (any, error) {
		return m.Cohorts(ctx, owner, queryInt(req, "months", 12, 36))
	}))
	r.Get("/products", metricHandler("products", logger, func(ctx context.Context, owner string, req *http.Request) (any, error) {
		return m.Products(ctx, owner, queryInt(req, "limit", 20, 100))
	}))
	r.Get("/churn-risk", metricHandler("churn risk", logger, func(ctx context.Context, owner string, req *http.Request) (any, error) {
		return m.ChurnRisk(ctx, owner, queryInt(req, "limit", 50, 500))
	}))
	r.Get("/reactivation", metricHandler("reactivation", logger, func(ctx context.Context, owner string, _ *http.Request) (any, error) {
		return m.Reactivation(ctx, owner)
	}))
	r.Get("/segments", metricHandler("segments", logger, func(ctx context.Context, owner string, _ *http.Request) (any, error) {
		return m.Segments(ctx, owner)
	}))
	r.Get("/reports", metricHandler("reports", logger, func(ctx context.Context, owner string, req *http.Request) (any, error) {
		return m.Reports(ctx, owner, queryInt(req, "months", 12, 36))
	}))
}
