// Package metrics defines prediction-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prediction-specific counter vectors
var (
	PredictionOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "prediction_outcomes_total",
		Help:      "Total number of predictions by outcome label",
	}, []string{"outcome"})

	PredictionCacheEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "prediction_cache_events_total",
		Help:      "Prediction cache lookups by result",
	}, []string{"result"})
)

// Prediction-specific histogram vectors
var (
	PredictionProbability = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "prediction_probability",
		Help:      "Probability assigned to the predicted outcome",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"outcome"})

	PredictedTotalGoals = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "predicted_total_goals",
		Help:      "Combined home and away goals per refined prediction",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7},
	})
)

// RecordPredictionOutcome records a served prediction by outcome label.
// outcome should be one of: "home_win", "draw", "away_win"
func RecordPredictionOutcome(outcome string) {
	PredictionOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordPredictionProbability records the probability assigned to the predicted outcome.
func RecordPredictionProbability(outcome string, probability float64) {
	PredictionProbability.WithLabelValues(outcome).Observe(probability)
}

// RecordPredictedGoals records the combined scoreline of a refined prediction.
func RecordPredictedGoals(totalGoals float64) {
	PredictedTotalGoals.Observe(totalGoals)
}

// RecordCacheHit records a prediction cache hit.
func RecordCacheHit() {
	PredictionCacheEventsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a prediction cache miss.
func RecordCacheMiss() {
	PredictionCacheEventsTotal.WithLabelValues("miss").Inc()
}
