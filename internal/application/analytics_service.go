package application

import (
	"context"
	"fmt"
	"time"

	"retentionos/internal/analytics"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// AnalyticsService serves the dashboard metrics for an owner. Identical
// concurrent requests share one computation and results are cached until
// the next sync invalidates them.
type AnalyticsService struct {
	customers ports.CustomerRepository
	orders    ports.OrderRepository
	cache     ports.MetricsCache
	window    time.Duration
	logger    zerolog.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewAnalyticsService creates a new analytics service. cache may be nil.
func NewAnalyticsService(
	customers ports.CustomerRepository,
	orders ports.OrderRepository,
	cache ports.MetricsCache,
	window time.Duration,
	logger zerolog.Logger,
) *AnalyticsService {
	if cache == nil {
		cache = nopCache{}
	}
	if window <= 0 {
		window = analytics.DefaultWindow
	}
	return &AnalyticsService{
		customers: customers,
		orders:    orders,
		cache:     cache,
		window:    window,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnalyticsService) Overview(ctx context.Context, ownerID string) (analytics.Overview, error) {
	return computeCached(ctx, s, ownerID, "overview", analytics.ComputeOverview)
}

func (s *AnalyticsService) Cohorts(ctx context.Context, ownerID string, months int) ([]analytics.Cohort, error) {
	return computeCached(ctx, s, ownerID, fmt.Sprintf("cohorts:%d", months), func(in analytics.Input) []analytics.Cohort {
		return analytics.ComputeCohorts(in, months)
	})
}

func (s *AnalyticsService) Products(ctx context.Context, ownerID string, limit int) ([]analytics.ProductPerformance, error) {
	return computeCached(ctx, s, ownerID, fmt.Sprintf("products:%d", limit), func(in analytics.Input) []analytics.ProductPerformance {
		return analytics.ComputeProducts(in, limit)
	})
}

func (s *AnalyticsService) ChurnRisk(ctx context.Context, ownerID string, limit int) ([]analytics.ChurnEntry, error) {
	return computeCached(ctx, s, ownerID, fmt.Sprintf("churn:%d", limit), func(in analytics.Input) []analytics.ChurnEntry {
		return analytics.ComputeChurnRisk(in, limit)
	})
}

func (s *AnalyticsService) Reactivation(ctx context.Context, ownerID string) (analytics.Reactivation, error) {
	return computeCached(ctx, s, ownerID, "reactivation", analytics.ComputeReactivation)
}

func (s *AnalyticsService) Segments(ctx context.Context, ownerID string) ([]analytics.Segment, error) {
	return computeCached(ctx, s, ownerID, "segments", analytics.ComputeSegments)
}

func (s *AnalyticsService) Reports(ctx context.Context, ownerID string, months int) ([]analytics.MonthlyReport, error) {
	return computeCached(ctx, s, ownerID, fmt.Sprintf("reports:%d", months), func(in analytics.Input) []analytics.MonthlyReport {
		return analytics.ComputeReports(in, months)
	})
}

func computeCached[T any](ctx context.Context, s *AnalyticsService, ownerID, key string, compute func(analytics.Input) T) (T, error) {
	var out T
	log := s.logger.With().Str("owner_id", ownerID).Str("metric", key).Logger()

	// The version is pinned before any rows are read
	version, err := s.cache.Version(ctx, ownerID)
	cacheable := err == nil
	if err != nil {
		log.Warn().Err(err).Msg("Metrics cache version read failed")
	}
	if cacheable {
		hit, err := s.cache.Get(ctx, ownerID, key, version, &out)
		if err != nil {
			log.Warn().Err(err).Msg("Metrics cache read failed")
		}
		if hit {
			return out, nil
		}
	}

	v, err, _ := s.group.Do(fmt.Sprintf("%s/%s/v%d", ownerID, key, version), func() (any, error) {
		in, err := s.load(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		result := compute(in)
		if cacheable {
			if err := s.cache.Set(ctx, ownerID, key, version, result); err != nil {
				log.Warn().Err(err).Msg("Metrics cache write failed")
			}
		}
		return result, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}

func (s *AnalyticsService) load(ctx context.Context, ownerID string) (analytics.Input, error) {
	customers, err := s.customers.ListByOwner(ctx, ownerID)
	if err != nil {
		return analytics.Input{}, fmt.Errorf("failed to load customers: %w", err)
	}
	orders, err := s.orders.ListByOwner(ctx, ownerID)
	if err != nil {
		return analytics.Input{}, fmt.Errorf("failed to load orders: %w", err)
	}
	return analytics.Input{
		Customers: customers,
		Orders:    orders,
		Now:       s.now(),
		Window:    s.window,
	}, nil
}
