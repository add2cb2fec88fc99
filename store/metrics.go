package store

import (
	"github.com/nasdf/entity"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus metrics of a set of stores and selectors.
type Metrics struct {
	mutations *prometheus.CounterVec
	records   *prometheus.GaugeVec
	selectors *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "entity",
				Name:      "mutations_total",
				Help:      "Total number of applied mutations by change class",
			},
			[]string{"feature", "change"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "entity",
				Name:      "records",
				Help:      "Number of records in the published state",
			},
			[]string{"feature"},
		),
		selectors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "entity",
				Name:      "selector_evaluations_total",
				Help:      "Total number of selector evaluations by cache result",
			},
			[]string{"selector", "result"},
		),
	}
	for _, c := range []prometheus.Collector{m.mutations, m.records, m.selectors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveMutation records a mutation of the given feature.
func (m *Metrics) ObserveMutation(feature string, change entity.Change, total int) {
	m.mutations.WithLabelValues(feature, change.String()).Inc()
	m.records.WithLabelValues(feature).Set(float64(total))
}

// ObserveSelector records a selector evaluation.
func (m *Metrics) ObserveSelector(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.selectors.WithLabelValues(name, result).Inc()
}
