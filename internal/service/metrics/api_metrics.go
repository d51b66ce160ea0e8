package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cosmic",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of pattern API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmic",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by pattern API endpoint",
		},
		[]string{"endpoint"},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmic",
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cosmic",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected live stream clients",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, RateLimited, WSClients)
	})
}
