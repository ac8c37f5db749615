package cloudantclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the exchange lifecycle.
// It is optional; a client without one records nothing. Safe for concurrent
// use.
type MetricsCollector struct {
	exchangesTotal    *prometheus.CounterVec
	exchangeDuration  *prometheus.HistogramVec
	exchangesInFlight *prometheus.GaugeVec
	tokenRefreshes    *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		exchangesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudantclient_exchanges_total",
				Help: "Total number of request/response exchanges",
			},
			[]string{"method", "status"},
		),
		exchangeDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudantclient_exchange_duration_seconds",
				Help:    "Duration of exchanges in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		exchangesInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cloudantclient_exchanges_in_flight",
				Help: "Number of exchanges currently in flight",
			},
			[]string{"method"},
		),
		tokenRefreshes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudantclient_token_refreshes_total",
				Help: "Total number of identity-token exchanges by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *MetricsCollector) exchangeStarted(method string) {
	m.exchangesInFlight.WithLabelValues(method).Inc()
}

func (m *MetricsCollector) exchangeFinished(method string) {
	m.exchangesInFlight.WithLabelValues(method).Dec()
}

func (m *MetricsCollector) exchangeCompleted(method string, statusCode int, elapsed time.Duration) {
	status := strconv.Itoa(statusCode)
	m.exchangesTotal.WithLabelValues(method, status).Inc()
	m.exchangeDuration.WithLabelValues(method, status).Observe(elapsed.Seconds())
}

func (m *MetricsCollector) tokenRefresh(outcome string) {
	m.tokenRefreshes.WithLabelValues(outcome).Inc()
}
