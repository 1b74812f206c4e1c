// Package metrics exposes sync telemetry to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records sync runs and record outcomes
type Collector struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	records     *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retentionos_sync_runs_total",
			Help: "Sync runs by terminal status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "retentionos_sync_duration_seconds",
			Help:    "Wall time of sync runs",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retentionos_sync_records_total",
			Help: "Reconciled records by entity and outcome",
		}, []string{"entity", "outcome"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retentionos_sync_fetch_errors_total",
			Help: "Remote page fetches that failed",
		}, []string{"entity"}),
	}

	reg.MustRegister(c.runs, c.runDuration, c.records, c.fetchErrors)
	return c
}

var _ ports.SyncMetrics = (*Collector)(nil)

func (c *Collector) ObserveRun(status domain.SyncStatus, duration time.Duration) {
	c.runs.WithLabelValues(string(status)).Inc()
	c.runDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

func (c *Collector) AddRecords(entity, outcome string, n int) {
	if n <= 0 {
		return
	}
	c.records.WithLabelValues(entity, outcome).Add(float64(n))
}

func (c *Collector) IncFetchError(entity string) {
	c.fetchErrors.WithLabelValues(entity).Inc()
}

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
