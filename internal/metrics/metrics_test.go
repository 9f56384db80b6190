package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveTraining(12)
	m.ObservePrediction(true)
	m.ObservePrediction(true)
	m.ObservePrediction(false)
	m.ObserveCorrection(4, 1, 2*time.Millisecond)
	m.ObserveEvaluation(10, 3)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.TrainingTokens))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Corrections.WithLabelValues("true")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Corrections.WithLabelValues("false")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.EvaluationPositions.WithLabelValues("scored")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EvaluationPositions.WithLabelValues("skipped")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CorrectionDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTraining(1)
		m.ObservePrediction(true)
		m.ObserveCorrection(1, 1, time.Second)
		m.ObserveEvaluation(1, 1)
	})
}
