package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ProxyRequests   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
	CallLogErrors   prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ProxyRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Proxy requests by action and result.",
		}, []string{"action", "result"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_ms",
			Help:      "Latency of vendor REST calls in milliseconds.",
			Buckets:   []float64{50, 100, 200, 400, 800, 1500, 3000, 6000},
		}, []string{"action"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Vendor REST errors by action and failure class.",
		}, []string{"action", "class"}),
		CallLogErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_log_errors_total",
			Help:      "Failed writes to the call log.",
		}),
	}
}

func (m *Metrics) ObserveUpstreamLatency(action string, d time.Duration) {
	m.UpstreamLatency.WithLabelValues(action).Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
