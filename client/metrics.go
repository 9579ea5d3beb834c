package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments outbound API calls with Prometheus collectors.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers request collectors on the provided registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campuscash_client_requests_total",
		Help: "Total number of API requests issued by the client",
	}, []string{"method", "endpoint", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campuscash_client_request_duration_seconds",
		Help:    "Duration of API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	if reg != nil {
		reg.MustRegister(requestTotal, requestDuration)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}
}

// ObserveRequest records one completed (or failed) request. Transport
// failures that never produced a response report status 0.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method":   method,
		"endpoint": endpoint,
		"status":   strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestDuration.With(labels).Observe(duration.Seconds())
}
