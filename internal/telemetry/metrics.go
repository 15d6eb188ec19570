package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the assistant. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RequestTotal          *prometheus.CounterVec
	RequestDurationMs     *prometheus.HistogramVec
	UpstreamFetchTotal    *prometheus.CounterVec
	UpstreamFetchDuration *prometheus.HistogramVec
	CompletionDurationMs  *prometheus.HistogramVec
	FilterActionTotal     *prometheus.CounterVec
	RateLimitHitsTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_request_total",
			Help: "Total number of chat requests handled.",
		}, []string{"intent", "status"}),

		RequestDurationMs: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_request_duration_ms",
			Help:    "Chat request duration in milliseconds, completion included.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"intent"}),

		UpstreamFetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_upstream_fetch_total",
			Help: "Backend fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),

		UpstreamFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_upstream_fetch_duration_ms",
			Help:    "Backend fetch latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000},
		}, []string{"resource"}),

		CompletionDurationMs: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_completion_duration_ms",
			Help:    "Completion call latency in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		}, []string{"provider", "status"}),

		FilterActionTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_filter_action_total",
			Help: "Total filter actions taken.",
		}, []string{"filter", "action"}),

		RateLimitHitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"dimension"}),
	}
}

// RecordRequest records metrics for a completed chat request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	if m == nil {
		return
	}
	m.RequestTotal.WithLabelValues(labels.Intent, labels.Status).Inc()
	m.RequestDurationMs.WithLabelValues(labels.Intent).Observe(labels.DurationMs)
}

// RecordUpstreamFetch records one backend call. outcome is "ok" or "error".
func (m *Metrics) RecordUpstreamFetch(resource, outcome string, durationMs float64) {
	if m == nil {
		return
	}
	m.UpstreamFetchTotal.WithLabelValues(resource, outcome).Inc()
	m.UpstreamFetchDuration.WithLabelValues(resource).Observe(durationMs)
}

func (m *Metrics) RecordCompletion(provider, status string, durationMs float64) {
	if m == nil {
		return
	}
	m.CompletionDurationMs.WithLabelValues(provider, status).Observe(durationMs)
}

// RecordFilterAction records a filter action metric.
func (m *Metrics) RecordFilterAction(filter, action string) {
	if m == nil {
		return
	}
	m.FilterActionTotal.WithLabelValues(filter, action).Inc()
}

func (m *Metrics) RecordRateLimitHit(dimension string) {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.WithLabelValues(dimension).Inc()
}

// RequestLabels holds the label values for recording a request.
type RequestLabels struct {
	Intent     string
	Status     string
	DurationMs float64
}
