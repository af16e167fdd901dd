// Package metrics defines training and data ingestion metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Training counter vectors
var (
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "training_runs_total",
		Help:      "Total number of training runs by model type and status",
	}, []string{"model_type", "status"})

	DatasetFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "dataset_fetches_total",
		Help:      "Total number of historical dataset fetches by source and status",
	}, []string{"source", "status"})
)

// Training gauge vectors
var (
	EvaluationMAE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "evaluation_mae",
		Help:      "Mean absolute error of the loaded model on the holdout split",
	}, []string{"target"})

	EvaluationRMSE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "evaluation_rmse",
		Help:      "Root mean squared error of the loaded model on the holdout split",
	}, []string{"target"})

	EvaluationR2 = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "evaluation_r2",
		Help:      "Coefficient of determination of the loaded model on the holdout split",
	}, []string{"target"})
)

// Training histogram vectors
var (
	DatasetRowsFetched = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "dataset_rows_fetched",
		Help:      "Number of match records returned per dataset fetch",
		Buckets:   []float64{10, 50, 100, 200, 500, 1000, 5000},
	})
)

// RecordTrainingRun records a training run event.
// modelType should be one of: "rf", "gbt", "ensemble"
// status should be one of: "success", "failure"
func RecordTrainingRun(modelType, status string) {
	TrainingRunsTotal.WithLabelValues(modelType, status).Inc()
}

// RecordDatasetFetch records a historical dataset fetch.
// status should be one of: "success", "failure"
func RecordDatasetFetch(source, status string) {
	DatasetFetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordDatasetRows records the size of a fetched dataset.
func RecordDatasetRows(rows int) {
	DatasetRowsFetched.Observe(float64(rows))
}

// UpdateEvaluationScores updates holdout metrics for one regression target.
// target should be one of: "home_goals", "away_goals"
func UpdateEvaluationScores(target string, mae, rmse, r2 float64) {
	EvaluationMAE.WithLabelValues(target).Set(mae)
	EvaluationRMSE.WithLabelValues(target).Set(rmse)
	EvaluationR2.WithLabelValues(target).Set(r2)
}
