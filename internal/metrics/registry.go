// Package metrics holds the Prometheus collectors of a session: load and
// render outcomes per format, query failures per error kind and the number
// of stored documents.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics of one or more sessions.
type Registry struct {
	LoadsTotal    *prometheus.CounterVec
	LoadDuration  *prometheus.HistogramVec
	RendersTotal  *prometheus.CounterVec
	QueryErrors   *prometheus.CounterVec
	Documents     prometheus.Gauge
	FilesWatched  prometheus.Gauge
	Reconversions *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initLoadMetrics()
	r.initRenderMetrics()
	r.initQueryMetrics()
	r.initWatchMetrics()
	return r
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initLoadMetrics() {
	r.LoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "antimony_loads_total",
			Help: "Documents loaded, by detected format and outcome",
		},
		[]string{"format", "status"},
	)
	r.LoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "antimony_load_duration_seconds",
			Help:    "Time spent parsing and resolving one document",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"format"},
	)
	r.Documents = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "antimony_documents",
			Help: "Documents currently held by the session store",
		},
	)
}

func (r *Registry) initRenderMetrics() {
	r.RendersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "antimony_renders_total",
			Help: "Renders, by output format and outcome",
		},
		[]string{"format", "status"},
	)
}

func (r *Registry) initQueryMetrics() {
	r.QueryErrors = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "antimony_query_errors_total",
			Help: "Failed queries, by error kind",
		},
		[]string{"kind"},
	)
}

func (r *Registry) initWatchMetrics() {
	r.FilesWatched = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "antimony_watch_files",
			Help: "Model files known to the watcher",
		},
	)
	r.Reconversions = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "antimony_watch_reconversions_total",
			Help: "Conversions triggered by file changes, by outcome",
		},
		[]string{"status"},
	)
}
