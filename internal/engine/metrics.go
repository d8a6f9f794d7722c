package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the API's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	recordsWritten  *prometheus.CounterVec
	referenceMisses *prometheus.CounterVec
	codesGenerated  *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		recordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curia_records_written_total",
			Help: "Rows created, updated or deleted, by entity and operation.",
		}, []string{"entity", "op"}),
		referenceMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curia_reference_misses_total",
			Help: "Reference codes that did not resolve, by category or table.",
		}, []string{"category"}),
		codesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curia_codes_generated_total",
			Help: "Sequential codes handed out, by prefix.",
		}, []string{"prefix"}),
	}
}

func (m *Metrics) recordWrite(entity, op string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsWritten.WithLabelValues(entity, op).Add(float64(n))
}

func (m *Metrics) referenceMiss(category string) {
	if m == nil {
		return
	}
	m.referenceMisses.WithLabelValues(category).Inc()
}

func (m *Metrics) codeGenerated(prefix string) {
	if m == nil {
		return
	}
	m.codesGenerated.WithLabelValues(prefix).Inc()
}
