package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared
// by the scoring pipeline and the archive fetcher.
type Metrics struct {
	// Scoring pipeline metrics.
	InstancesScored  prometheus.Counter
	InstancesSkipped *prometheus.CounterVec // labels: reason={few_members,no_members}
	ScoringDuration  prometheus.Histogram

	// TIGGE archive fetch metrics.
	ArchiveRequests *prometheus.CounterVec // labels: origin, outcome={success,error,aborted}
	ArchiveDuration *prometheus.HistogramVec
	ArchiveBytes    prometheus.Counter
	FetchRunning    prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		InstancesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_skill",
			Name:      "instances_scored_total",
			Help:      "Total forecast instances scored.",
		}),
		InstancesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_skill",
			Name:      "instances_skipped_total",
			Help:      "Forecast instances skipped before scoring, by reason.",
		}, []string{"reason"}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_skill",
			Name:      "scoring_duration_seconds",
			Help:      "Duration of a complete match-filter-score run.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ArchiveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_skill",
			Name:      "archive_requests_total",
			Help:      "TIGGE retrieval requests by model origin and outcome.",
		}, []string{"origin", "outcome"}),
		ArchiveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_skill",
			Name:      "archive_request_duration_seconds",
			Help:      "TIGGE retrieval duration from submit to downloaded file.",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600, 7200},
		}, []string{"origin"}),
		ArchiveBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_skill",
			Name:      "archive_bytes_total",
			Help:      "Total bytes downloaded from the TIGGE archive.",
		}),
		FetchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_skill",
			Name:      "fetch_running",
			Help:      "1 while the fetch batch is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.InstancesScored,
		m.InstancesSkipped,
		m.ScoringDuration,
		m.ArchiveRequests,
		m.ArchiveDuration,
		m.ArchiveBytes,
		m.FetchRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		InstancesScored:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_skill", Name: "instances_scored_total"}),
		InstancesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_skill", Name: "instances_skipped_total"}, []string{"reason"}),
		ScoringDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_skill", Name: "scoring_duration_seconds"}),
		ArchiveRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_skill", Name: "archive_requests_total"}, []string{"origin", "outcome"}),
		ArchiveDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "storm_skill", Name: "archive_request_duration_seconds"}, []string{"origin"}),
		ArchiveBytes:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_skill", Name: "archive_bytes_total"}),
		FetchRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "storm_skill", Name: "fetch_running"}),
	}
}
