// Package metrics exposes refresh and source health as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flintmeta"

// Refresh outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics owns its own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	RefreshTotal            *prometheus.CounterVec
	RefreshDuration         prometheus.Histogram
	CatalogEntries          *prometheus.GaugeVec
	SourceFetchFailures     *prometheus.CounterVec
	DescriptorFetchFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Catalog rebuild cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of catalog rebuild cycles.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CatalogEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_entries",
			Help:      "Entries per collection in the published snapshot.",
		}, []string{"collection"}),
		SourceFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_failures_total",
			Help:      "Failed fetches per remote source.",
		}, []string{"source"}),
		DescriptorFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptor_fetch_failures_total",
			Help:      "Loader descriptors replaced by an empty document, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.RefreshTotal,
		m.RefreshDuration,
		m.CatalogEntries,
		m.SourceFetchFailures,
		m.DescriptorFetchFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRefresh records one rebuild cycle.
func (m *Metrics) ObserveRefresh(outcome string, took time.Duration) {
	m.RefreshTotal.WithLabelValues(outcome).Inc()
	m.RefreshDuration.Observe(took.Seconds())
}

// SetCatalogCounts updates the per-collection gauges.
func (m *Metrics) SetCatalogCounts(counts map[string]int) {
	for collection, n := range counts {
		m.CatalogEntries.WithLabelValues(collection).Set(float64(n))
	}
}

// SourceFailed counts one failed fetch for source.
func (m *Metrics) SourceFailed(source string) {
	m.SourceFetchFailures.WithLabelValues(source).Inc()
}

// DescriptorFailed counts one descriptor fallback.
func (m *Metrics) DescriptorFailed(reason string) {
	m.DescriptorFetchFailures.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
