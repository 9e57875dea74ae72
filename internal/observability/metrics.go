package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
)

// DispatchMetrics records matchmaker dispatch attempts in Prometheus.
type DispatchMetrics struct {
	registry   *prometheus.Registry
	attempts   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rejections *prometheus.CounterVec
}

// NewDispatchMetrics builds an isolated registry holding the dispatch
// collectors plus the Go runtime and process collectors.
func NewDispatchMetrics(namespace string) *DispatchMetrics {
	if namespace == "" {
		namespace = "awap"
	}

	m := &DispatchMetrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_attempts_total",
			Help:      "Matchmaker calls by request kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Latency of matchmaker calls.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_rejections_total",
			Help:      "Match requests rejected before reaching the matchmaker.",
		}, []string{"kind", "reason"}),
	}

	m.registry.MustRegister(
		m.attempts,
		m.duration,
		m.rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *DispatchMetrics) ObserveDispatch(kind dispatch.Kind, outcome string, d time.Duration) {
	m.attempts.WithLabelValues(string(kind), outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (m *DispatchMetrics) ObserveRejection(kind dispatch.Kind, reason string) {
	m.rejections.WithLabelValues(string(kind), reason).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *DispatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *DispatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}
