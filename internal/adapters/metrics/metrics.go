// Package metrics exposes query counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tiktok-stats/internal/domain"
)

const namespace = "tiktok_stats"

// Metrics holds the query metrics on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal         *prometheus.CounterVec
	QueryDurationSeconds *prometheus.HistogramVec
}

// New creates the registry and registers the query metrics plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of profile queries by outcome and error code",
			},
			[]string{"outcome", "code"},
		),
		QueryDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of profile queries in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),
	}
}

// ObserveQuery records one finished query. Successful queries carry an
// empty code.
func (m *Metrics) ObserveQuery(outcome domain.Outcome, code domain.Code, elapsed time.Duration) {
	m.QueriesTotal.WithLabelValues(string(outcome), string(code)).Inc()
	m.QueryDurationSeconds.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
