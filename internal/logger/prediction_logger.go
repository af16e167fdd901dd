// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for the prediction pipeline.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs a completed fixture prediction.
func (pl *PredictionLogger) LogPrediction(homeTeam, awayTeam string, homeScore, awayScore int, result string, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"home_team":  homeTeam,
		"away_team":  awayTeam,
		"home_score": homeScore,
		"away_score": awayScore,
		"result":     result,
		"latency_ms": latencyMs,
	}).Info("Match prediction completed")
}

// LogValidationFailure logs a rejected prediction input.
func (pl *PredictionLogger) LogValidationFailure(field string, reason string) {
	pl.WithFields(logrus.Fields{
		"field":  field,
		"reason": reason,
	}).Warn("Prediction input rejected")
}

// LogModelTraining logs model training events.
func (pl *PredictionLogger) LogModelTraining(modelType string, samples int, trainingDurationSec float64, metrics map[string]float64) {
	pl.WithFields(logrus.Fields{
		"model_type":        modelType,
		"samples":           samples,
		"training_duration": trainingDurationSec,
		"metrics":           metrics,
	}).Info("Model training completed")
}

// LogModelLoad logs a trained artifact load at process start.
func (pl *PredictionLogger) LogModelLoad(modelType string, path string, featureCount int) {
	pl.WithFields(logrus.Fields{
		"model_type":    modelType,
		"artifact_path": path,
		"feature_count": featureCount,
	}).Info("Model artifact loaded")
}

// LogBatchPrediction logs a batch prediction run.
func (pl *PredictionLogger) LogBatchPrediction(total int, failed int, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"total":      total,
		"failed":     failed,
		"latency_ms": latencyMs,
	}).Info("Batch prediction completed")
}

// LogPredictionError logs a failed prediction.
func (pl *PredictionLogger) LogPredictionError(homeTeam, awayTeam string, errorReason string) {
	pl.WithFields(logrus.Fields{
		"home_team":    homeTeam,
		"away_team":    awayTeam,
		"error_reason": errorReason,
	}).Error("Match prediction failed")
}
