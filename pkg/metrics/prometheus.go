package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	detected    *prometheus.CounterVec
	exported    *prometheus.CounterVec
	exhausted   *prometheus.CounterVec
	cache       *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		detected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmic_patterns_detected_total",
				Help: "Total number of pattern detections by definition id",
			},
			[]string{"pattern"},
		),
		exported: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmic_events_exported_total",
				Help: "Total number of detection events sent to a backend",
			},
			[]string{"backend", "pattern"},
		),
		exhausted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmic_search_exhausted_total",
				Help: "Forecast searches that spent their whole step budget",
			},
			[]string{"pattern"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmic_forecast_cache_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmic_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cosmic_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordPatternDetected(id string) {
	r.detected.WithLabelValues(id).Inc()
}

// RecordEventExported records an event delivered to a backend.
func (r *Recorder) RecordEventExported(backend, id string) {
	r.exported.WithLabelValues(backend, id).Inc()
}

func (r *Recorder) RecordSearchExhausted(id string) {
	r.exhausted.WithLabelValues(id).Inc()
}

// RecordCacheResult records a forecast cache hit or miss.
func (r *Recorder) RecordCacheResult(hit bool) {
	if hit {
		r.cache.WithLabelValues("hit").Inc()
		return
	}
	r.cache.WithLabelValues("miss").Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
