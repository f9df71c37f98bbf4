package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map
// viewer.
type Metrics struct {
	FeedConnects  prometheus.Counter
	FeedErrors    prometheus.Counter
	FeedConnected prometheus.Gauge
	DateRequests  prometheus.Counter

	// Snapshot metrics.
	SnapshotsReceived prometheus.Counter
	SnapshotRecords   prometheus.Histogram
	RecordsDiscarded  *prometheus.CounterVec // labels: reason={parse,no_coordinates,out_of_bounds,off_canvas,no_size}

	// Rendering metrics.
	RenderDuration prometheus.Histogram
	HoverRequests  *prometheus.CounterVec // labels: outcome={hit,miss}
}

// NewMetrics creates and registers all viewer metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FeedConnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_viewer",
			Name:      "feed_connects_total",
			Help:      "Total websocket sessions established with the snapshot feed.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_viewer",
			Name:      "feed_errors_total",
			Help:      "Total feed dial and session failures.",
		}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_viewer",
			Name:      "feed_connected",
			Help:      "1 while a feed session is live, 0 otherwise.",
		}),
		DateRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_viewer",
			Name:      "date_requests_total",
			Help:      "Total snapshot requests sent upstream.",
		}),
		SnapshotsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_viewer",
			Name:      "snapshots_received_total",
			Help:      "Total snapshots applied to the read-model.",
		}),
		SnapshotRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_viewer",
			Name:      "snapshot_records",
			Help:      "Number of records per received snapshot.",
			Buckets:   []float64{0, 10, 50, 100, 500, 1000, 2500, 5000},
		}),
		RecordsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_viewer",
			Name:      "records_discarded_total",
			Help:      "Records dropped during read-model builds, by reason.",
		}, []string{"reason"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_viewer",
			Name:      "render_duration_seconds",
			Help:      "Time to draw and encode one map frame.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		HoverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_viewer",
			Name:      "hover_requests_total",
			Help:      "Hover resolutions by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.FeedConnects,
		m.FeedErrors,
		m.FeedConnected,
		m.DateRequests,
		m.SnapshotsReceived,
		m.SnapshotRecords,
		m.RecordsDiscarded,
		m.RenderDuration,
		m.HoverRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FeedConnects:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_viewer", Name: "feed_connects_total"}),
		FeedErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_viewer", Name: "feed_errors_total"}),
		FeedConnected:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire_viewer", Name: "feed_connected"}),
		DateRequests:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_viewer", Name: "date_requests_total"}),
		SnapshotsReceived: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_viewer", Name: "snapshots_received_total"}),
		SnapshotRecords:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_viewer", Name: "snapshot_records"}),
		RecordsDiscarded:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire_viewer", Name: "records_discarded_total"}, []string{"reason"}),
		RenderDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_viewer", Name: "render_duration_seconds"}),
		HoverRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire_viewer", Name: "hover_requests_total"}, []string{"outcome"}),
	}
}
