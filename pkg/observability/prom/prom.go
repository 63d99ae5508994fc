// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/canonic/pkg/observability"
)

// Metrics holds the collectors. It implements every hook interface in
// package observability.
type Metrics struct {
	searches       *prometheus.CounterVec
	searchNodes    prometheus.Counter
	searchDuration prometheus.Histogram
	groupSize      prometheus.Histogram
	refineDuration prometheus.Histogram
	cacheRequests  *prometheus.CounterVec
	cacheBytes     prometheus.Counter
	catalogAdds    *prometheus.CounterVec
	catalogLookups *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh registry, which keeps tests independent.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canonic_searches_total",
			Help: "Canonical labeling searches by outcome",
		}, []string{"result"}),
		searchNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canonic_search_nodes_total",
			Help: "Search tree nodes visited",
		}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canonic_search_duration_seconds",
			Help:    "Duration of canonical labeling searches",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		groupSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canonic_group_size",
			Help:    "Automorphism group sizes found",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		refineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canonic_refine_duration_seconds",
			Help:    "Duration of equitable refinements",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canonic_cache_requests_total",
			Help: "Cache lookups by key type and result",
		}, []string{"type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canonic_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		catalogAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canonic_catalog_adds_total",
			Help: "Catalog additions, by whether a new class was created",
		}, []string{"created"}),
		catalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canonic_catalog_lookups_total",
			Help: "Catalog lookups by result",
		}, []string{"found"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canonic_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canonic_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.searches, m.searchNodes, m.searchDuration, m.groupSize, m.refineDuration,
		m.cacheRequests, m.cacheBytes, m.catalogAdds, m.catalogLookups,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Register installs m as the global search, cache, catalog and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetSearchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetCatalogHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) OnSearchStart(context.Context, int) {}

func (m *Metrics) OnSearchComplete(_ context.Context, ev observability.SearchEvent) {
	result := "ok"
	if ev.Err != nil {
		result = "error"
	}
	m.searches.WithLabelValues(result).Inc()
	m.searchNodes.Add(float64(ev.Nodes))
	m.searchDuration.Observe(ev.Duration.Seconds())
	if ev.Err == nil {
		m.groupSize.Observe(float64(ev.GroupSize))
	}
}

func (m *Metrics) OnRefineComplete(_ context.Context, _, _ int, d time.Duration) {
	m.refineDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, _ string, size int) {
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnCatalogAdd(_ context.Context, created bool) {
	m.catalogAdds.WithLabelValues(strconv.FormatBool(created)).Inc()
}

func (m *Metrics) OnCatalogLookup(_ context.Context, found bool) {
	m.catalogLookups.WithLabelValues(strconv.FormatBool(found)).Inc()
}

func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.SearchHooks  = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.CatalogHooks = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
