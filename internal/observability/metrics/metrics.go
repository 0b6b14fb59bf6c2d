package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fallback kinds recorded by ObserveFallback.
const (
	FallbackDirectoryCatalog = "directory_catalog"
	FallbackBookingSimulator = "booking_simulator"
)

// ClientMetrics exposes counters for outbound gateway traffic and for the
// degraded paths (built-in doctor catalog, local booking simulator).
type ClientMetrics struct {
	requestsTotal *prometheus.CounterVec
	fallbackTotal *prometheus.CounterVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total outbound gateway requests",
		}, []string{"channel", "method", "status"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "gateway",
			Name:      "fallback_total",
			Help:      "Total activations of a degraded path",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.fallbackTotal)
	return m
}

func (m *ClientMetrics) ObserveRequest(channel, method, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(channel, method, status).Inc()
}

func (m *ClientMetrics) ObserveFallback(kind string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(kind).Inc()
}
