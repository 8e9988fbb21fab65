package reporting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts report builds that missed the cache.
type Metrics struct {
	builds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the report collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_report_builds_total",
		Help: "Reports computed from the record store, by kind.",
	}, []string{"kind"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_report_build_duration_seconds",
		Help:    "Time spent fetching records and aggregating a report.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	registerer.MustRegister(builds, duration)
	return &Metrics{builds: builds, duration: duration}
}

func (m *Metrics) observe(kind string, start time.Time) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(kind).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
