// Package metrics provides centralized Prometheus metrics registry for the forecast service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "predictions_total",
		Help:      "Total number of single match predictions served",
	})
	BatchPredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "batch_predictions_total",
		Help:      "Total number of batch prediction requests served",
	})
	PredictionErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "prediction_errors_total",
		Help:      "Total number of failed prediction attempts",
	})
	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "validation_failures_total",
		Help:      "Total number of prediction inputs rejected by validation",
	})
)

// Gauge metrics
var (
	ModelLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "model_loaded",
		Help:      "Whether a trained model artifact is currently loaded (1 or 0)",
	})
	ModelTrainingSamples = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "model_training_samples",
		Help:      "Number of match records the loaded model was trained on",
	})
	LastTrainingTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "last_training_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed training run",
	})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of single prediction requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BatchPredictionSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "batch_prediction_size",
		Help:      "Number of fixtures per batch prediction request",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
	})
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "training_duration_seconds",
		Help:      "Duration of model training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(BatchPredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(ValidationFailuresTotal)

		// Register gauge metrics
		registry.MustRegister(ModelLoaded)
		registry.MustRegister(ModelTrainingSamples)
		registry.MustRegister(LastTrainingTimestamp)

		// Register histogram metrics
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(BatchPredictionSize)
		registry.MustRegister(TrainingDuration)

		// Register prediction metrics
		registry.MustRegister(PredictionOutcomesTotal)
		registry.MustRegister(PredictionCacheEventsTotal)
		registry.MustRegister(PredictionProbability)
		registry.MustRegister(PredictedTotalGoals)

		// Register training metrics
		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(DatasetFetchesTotal)
		registry.MustRegister(EvaluationMAE)
		registry.MustRegister(EvaluationRMSE)
		registry.MustRegister(EvaluationR2)
		registry.MustRegister(DatasetRowsFetched)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a served single prediction and its latency.
func RecordPrediction(durationSeconds float64) {
	PredictionsTotal.Inc()
	PredictionLatency.Observe(durationSeconds)
}

// RecordBatchPrediction records a served batch prediction and its size.
func RecordBatchPrediction(size int) {
	BatchPredictionsTotal.Inc()
	BatchPredictionSize.Observe(float64(size))
}

// RecordPredictionError records a failed prediction attempt.
func RecordPredictionError() {
	PredictionErrorsTotal.Inc()
}

// RecordValidationFailure records a rejected prediction input.
func RecordValidationFailure() {
	ValidationFailuresTotal.Inc()
}

// UpdateModelLoaded updates the model loaded gauge.
func UpdateModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}

// UpdateModelTrainingSamples updates the loaded model sample count gauge.
func UpdateModelTrainingSamples(count float64) {
	ModelTrainingSamples.Set(count)
}

// UpdateLastTrainingTimestamp updates the last training timestamp gauge.
func UpdateLastTrainingTimestamp(unixSeconds float64) {
	LastTrainingTimestamp.Set(unixSeconds)
}

// RecordTrainingDuration records the duration of a training run.
func RecordTrainingDuration(durationSeconds float64) {
	TrainingDuration.Observe(durationSeconds)
}
