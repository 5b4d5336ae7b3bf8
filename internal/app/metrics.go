package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	searches     *prometheus.CounterVec
	viewDuration *prometheus.HistogramVec
	workloadDocs prometheus.Gauge
}

// NewMetrics constructs collectors and registers them on reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datatracker",
			Name:      "searches_total",
			Help:      "Document searches by cache outcome.",
		}, []string{"cache"}),
		viewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datatracker",
			Name:      "view_duration_seconds",
			Help:      "Time spent computing one view.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		workloadDocs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "datatracker",
			Name:      "workload_documents",
			Help:      "Documents counted by the most recent workload computation.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.searches, m.viewDuration, m.workloadDocs)
	}
	return m
}

func (m *Metrics) observeSearch(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeView(view string, started time.Time, now time.Time) {
	if m == nil {
		return
	}
	m.viewDuration.WithLabelValues(view).Observe(now.Sub(started).Seconds())
}

func (m *Metrics) setWorkloadDocuments(n int) {
	if m == nil {
		return
	}
	m.workloadDocs.Set(float64(n))
}
