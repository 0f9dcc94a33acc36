package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the live client.
type Metrics struct {
	Registry           *prometheus.Registry
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    prometheus.Histogram
	RetriesTotal       prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
	LiveMatches        prometheus.Gauge
	InningsParsedTotal prometheus.Counter
	SnapshotsTotal     prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cricket_requests_total",
			Help: "Total HTTP requests issued, by phase.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cricket_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cricket_retries_total",
			Help: "Total number of retry attempts scheduled.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cricket_errors_total",
			Help: "Total number of fetch errors by type.",
		},
		[]string{"error_type"},
	)
	liveMatches := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cricket_live_matches",
			Help: "Number of live matches currently tracked.",
		},
	)
	inningsParsed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cricket_innings_parsed_total",
			Help: "Total number of innings extracted from scorecards.",
		},
	)
	snapshots := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cricket_snapshots_recorded_total",
			Help: "Total number of match snapshots sent to the recorder.",
		},
	)

	registry.MustRegister(requests, requestDuration, retries, errorsTotal, liveMatches, inningsParsed, snapshots)

	return &Metrics{
		Registry:           registry,
		RequestsTotal:      requests,
		RequestDuration:    requestDuration,
		RetriesTotal:       retries,
		ErrorsTotal:        errorsTotal,
		LiveMatches:        liveMatches,
		InningsParsedTotal: inningsParsed,
		SnapshotsTotal:     snapshots,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetLiveMatches records how many matches are being followed.
func (m *Metrics) SetLiveMatches(n int) {
	if m == nil {
		return
	}
	m.LiveMatches.Set(float64(n))
}

// AddInnings counts innings extracted from one scorecard.
func (m *Metrics) AddInnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.InningsParsedTotal.Add(float64(n))
}

// IncSnapshots increments the recorded snapshots counter.
func (m *Metrics) IncSnapshots() {
	if m == nil {
		return
	}
	m.SnapshotsTotal.Inc()
}
