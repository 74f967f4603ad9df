package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation pipeline.
type Metrics struct {
	PointsIngested   prometheus.Counter
	PointsSuppressed prometheus.Counter
	PointsPromoted   prometheus.Counter
	HexbinsProduced  prometheus.Counter

	AggregationsTotal  *prometheus.CounterVec // labels: outcome={success,error}
	TessellationsTotal *prometheus.CounterVec // labels: outcome={success,empty,error}

	RequestPoints       prometheus.Histogram
	StageDuration       *prometheus.HistogramVec // labels: stage={tag,suppress,resolve,materialize}
	AggregationDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PointsIngested,
		m.PointsSuppressed,
		m.PointsPromoted,
		m.HexbinsProduced,
		m.AggregationsTotal,
		m.TessellationsTotal,
		m.RequestPoints,
		m.StageDuration,
		m.AggregationDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PointsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexbin",
			Name:      "points_ingested_total",
			Help:      "Total point records entering the aggregation pipeline.",
		}),
		PointsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexbin",
			Name:      "points_suppressed_total",
			Help:      "Total points dropped for never clearing the count floor.",
		}),
		PointsPromoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexbin",
			Name:      "points_promoted_total",
			Help:      "Total points reassigned to a coarser ancestor during overlap resolution.",
		}),
		HexbinsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexbin",
			Name:      "hexbins_produced_total",
			Help:      "Total hexbin records materialized.",
		}),
		AggregationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexbin",
			Name:      "aggregations_total",
			Help:      "Aggregation runs by outcome.",
		}, []string{"outcome"}),
		TessellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexbin",
			Name:      "tessellations_total",
			Help:      "Area-of-interest tessellations by outcome.",
		}, []string{"outcome"}),
		RequestPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hexbin",
			Name:      "request_points",
			Help:      "Number of points per aggregation run.",
			Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hexbin",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"stage"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hexbin",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a complete four-stage aggregation run.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
