package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	increments  prometheus.Counter
	storeErrors *prometheus.CounterVec
	totalTrees  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		increments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tree_clicker",
			Name:      "increments_total",
			Help:      "Trees added to the global counter.",
		}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tree_clicker",
			Name:      "store_errors_total",
			Help:      "Counter store failures by operation.",
		}, []string{"op"}),
		totalTrees: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tree_clicker",
			Name:      "total_trees",
			Help:      "Last global tree total seen by this instance.",
		}),
	}
}

func (m *Metrics) observeTotal(total int64) {
	m.totalTrees.Set(float64(total))
}

func (m *Metrics) observeIncrement(total int64) {
	m.increments.Inc()
	m.observeTotal(total)
}

func (m *Metrics) observeStoreError(op string) {
	m.storeErrors.WithLabelValues(op).Inc()
}
