package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe("dcf", OutcomeOK, time.Now())
	m.Observe("dcf", OutcomeOK, time.Now())
	m.Observe("dcf", OutcomeDomainError, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calculations.WithLabelValues("dcf", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("dcf", OutcomeDomainError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("dcf", OutcomeOK, time.Now()) })
}
