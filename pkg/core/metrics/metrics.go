// Package metrics exposes Prometheus instrumentation for valuation calculations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for calculation counters.
const (
	OutcomeOK              = "ok"
	OutcomeValidationError = "validation_error"
	OutcomeDomainError     = "domain_error"
)

type Metrics struct {
	Calculations *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
}

// New registers the valuation collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "valuation_calculations_total",
			Help: "Valuation calculations by method and outcome.",
		}, []string{"method", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "valuation_calculation_seconds",
			Help:    "Time spent computing a valuation.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"method"}),
	}
	reg.MustRegister(m.Calculations, m.Duration)
	return m
}

// Observe records one calculation. A nil receiver is a no-op.
func (m *Metrics) Observe(method, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(method, outcome).Inc()
	m.Duration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
