package worker

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instrumentation a Worker reports through,
// if configured. Grounded on the counter/histogram registration idiom in
// runZeroInc-sockstats's exporter package, adapted from a custom Collector
// to direct CounterVec/Histogram instances since a Worker's dispatch loop
// already holds the values it needs to report rather than collecting them
// from an external source on scrape.
type Metrics struct {
	dispatched *prometheus.CounterVec
	latency    prometheus.Histogram
}

// NewMetrics constructs and registers a Metrics against reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid collisions with the default
// global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dectnrp",
			Subsystem: "worker",
			Name:      "jobs_dispatched_total",
			Help:      "Number of jobs dispatched to firmware callbacks, by kind.",
		}, []string{"kind"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dectnrp",
			Subsystem: "worker",
			Name:      "job_dispatch_seconds",
			Help:      "Time spent inside a single firmware callback dispatch.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	reg.MustRegister(m.dispatched, m.latency)
	return m
}

func (m *Metrics) observe(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(kind).Inc()
	m.latency.Observe(seconds)
}
