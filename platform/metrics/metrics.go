// Package metrics exposes Prometheus collectors for the reporting pipeline.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reporting holds the collectors shared by the analytics and reports modules.
type Reporting struct {
	registry        *prometheus.Registry
	ReportsExported *prometheus.CounterVec
	ExportsRefused  *prometheus.CounterVec
	SnapshotFetches *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
}

// NewReporting registers the collectors on a fresh registry.
func NewReporting() *Reporting {
	reg := prometheus.NewRegistry()
	m := &Reporting{
		registry: reg,
		ReportsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estate",
			Subsystem: "reports",
			Name:      "exported_total",
			Help:      "Report files produced, by type and format.",
		}, []string{"type", "format"}),
		ExportsRefused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estate",
			Subsystem: "reports",
			Name:      "refused_total",
			Help:      "Export requests refused before a file was produced.",
		}, []string{"reason"}),
		SnapshotFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estate",
			Subsystem: "leads",
			Name:      "snapshot_fetches_total",
			Help:      "Lead snapshot fetches by outcome (stored, discarded, failed).",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "estate",
			Subsystem: "leads",
			Name:      "snapshot_fetch_seconds",
			Help:      "Time spent fetching leads and agents for a snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.ReportsExported,
		m.ExportsRefused,
		m.SnapshotFetches,
		m.FetchDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Reporting) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Registry exposes the underlying registry for tests.
func (m *Reporting) Registry() *prometheus.Registry {
	return m.registry
}
