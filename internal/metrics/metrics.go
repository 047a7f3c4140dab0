package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics holds all Prometheus metrics for the sync engine.
type SyncMetrics struct {
	RunsTotal    *prometheus.CounterVec
	RecordsTotal *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
}

// NewSyncMetrics initializes and registers the Prometheus metrics.
func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total number of sync runs by entity kind and terminal status.",
		}, []string{"entity_kind", "status"}),
		RecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "engine",
			Name:      "records_total",
			Help:      "Total number of reconciled records by entity kind and outcome.",
		}, []string{"entity_kind", "op"}), // op: created, updated, unchanged, error
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storesync",
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of sync runs by entity kind.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"entity_kind"}),
	}
}
