package server

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	compiles *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "espalier_compile_total",
			Help: "Machine definitions processed, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "espalier_compile_duration_seconds",
			Help:    "Time spent validating one definition.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.compiles, m.duration)
	return m
}
