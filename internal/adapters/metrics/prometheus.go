// Package metrics exposes cache behaviour as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"callscope/internal/ports"
)

const (
	metricsNamespace = "callscope"
	cacheSubsystem   = "cache"
)

var _ ports.CacheMetrics = (*CacheMetrics)(nil)

// CacheMetrics counts cache lookups and failed fetches.
// Labels: graph, query (method, neighbor, neighbors, edge, top_edges, tree)
type CacheMetrics struct {
	HitsTotal     *prometheus.CounterVec
	MissesTotal   *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
}

// NewCacheMetrics creates the cache metrics and registers them with reg
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	labels := []string{"graph", "query"}
	m := &CacheMetrics{
		HitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cacheSubsystem,
			Name:      "hits_total",
			Help:      "Queries answered from the element cache",
		}, labels),
		MissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cacheSubsystem,
			Name:      "misses_total",
			Help:      "Queries that required a request to the graph service",
		}, labels),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cacheSubsystem,
			Name:      "fetch_failures_total",
			Help:      "Requests to the graph service that failed",
		}, labels),
	}
	reg.MustRegister(m.HitsTotal, m.MissesTotal, m.FailuresTotal)
	return m
}

func (m *CacheMetrics) CacheHit(graph, query string) {
	m.HitsTotal.WithLabelValues(graph, query).Inc()
}

func (m *CacheMetrics) CacheMiss(graph, query string) {
	m.MissesTotal.WithLabelValues(graph, query).Inc()
}

func (m *CacheMetrics) FetchFailed(graph, query string) {
	m.FailuresTotal.WithLabelValues(graph, query).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
