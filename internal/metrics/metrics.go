package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "predict"

// Metrics holds the language-model counters. A nil *Metrics records nothing.
type Metrics struct {
	TrainingTokens      prometheus.Counter
	Predictions         *prometheus.CounterVec // result: hit, miss
	Corrections         *prometheus.CounterVec // changed: true, false
	CorrectionDuration  prometheus.Histogram
	EvaluationPositions *prometheus.CounterVec // outcome: scored, skipped
}

// NewMetrics registers the metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TrainingTokens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_tokens_total",
			Help:      "Tokens consumed by training passes",
		}),
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Next-token predictions by whether the context was known",
		}, []string{"result"}),
		Corrections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrected_words_total",
			Help:      "Words passed through the corrector by whether they changed",
		}, []string{"changed"}),
		CorrectionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "correction_duration_seconds",
			Help:      "Sentence correction latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		EvaluationPositions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_positions_total",
			Help:      "Test positions seen by the guessing game by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveTraining(tokens int) {
	if m == nil {
		return
	}
	m.TrainingTokens.Add(float64(tokens))
}

func (m *Metrics) ObservePrediction(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Predictions.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCorrection(words, changed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Corrections.WithLabelValues("true").Add(float64(changed))
	m.Corrections.WithLabelValues("false").Add(float64(words - changed))
	m.CorrectionDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveEvaluation(scored, skipped int64) {
	if m == nil {
		return
	}
	m.EvaluationPositions.WithLabelValues("scored").Add(float64(scored))
	m.EvaluationPositions.WithLabelValues("skipped").Add(float64(skipped))
}
