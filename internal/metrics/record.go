package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Every Record method is a no-op on a nil registry, so sessions built
// without metrics need no checks.

// RecordLoad records one load attempt of the given format.
func (r *Registry) RecordLoad(format string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.LoadsTotal.WithLabelValues(format, status(err)).Inc()
	if err == nil {
		r.LoadDuration.WithLabelValues(format).Observe(duration.Seconds())
	}
}

func (r *Registry) RecordRender(format string, err error) {
	if r == nil {
		return
	}
	r.RendersTotal.WithLabelValues(format, status(err)).Inc()
}

// RecordQueryError counts a failed query under kind.
func (r *Registry) RecordQueryError(kind string) {
	if r == nil {
		return
	}
	r.QueryErrors.WithLabelValues(kind).Inc()
}

func (r *Registry) SetDocuments(n int) {
	if r == nil {
		return
	}
	r.Documents.Set(float64(n))
}

func (r *Registry) SetFilesWatched(n int) {
	if r == nil {
		return
	}
	r.FilesWatched.Set(float64(n))
}

func (r *Registry) RecordReconversion(err error) {
	if r == nil {
		return
	}
	r.Reconversions.WithLabelValues(status(err)).Inc()
}

// WriteTextfile writes the current values in the Prometheus text format,
// for the node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
