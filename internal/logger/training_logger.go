// Package logger provides training-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// TrainingLogger provides dedicated logging for the training pipeline.
type TrainingLogger struct {
	*logrus.Entry
}

// NewTrainingLogger creates a new training logger.
func NewTrainingLogger(baseLogger *logrus.Logger) *TrainingLogger {
	return &TrainingLogger{
		Entry: baseLogger.WithField("component", "training"),
	}
}

// LogDatasetGenerated logs a synthetic dataset build.
func (tl *TrainingLogger) LogDatasetGenerated(samples int, seed int64) {
	tl.WithFields(logrus.Fields{
		"samples": samples,
		"seed":    seed,
	}).Info("Synthetic dataset generated")
}

// LogTrainingCompleted logs a finished model fit.
func (tl *TrainingLogger) LogTrainingCompleted(modelID string, modelType string, samples int, durationMs float64) {
	tl.WithFields(logrus.Fields{
		"model_id":    modelID,
		"model_type":  modelType,
		"samples":     samples,
		"duration_ms": durationMs,
	}).Info("Model training completed")
}

// LogEvaluationCompleted logs hold-out evaluation results.
func (tl *TrainingLogger) LogEvaluationCompleted(modelType string, metrics map[string]float64) {
	tl.WithFields(logrus.Fields{
		"model_type": modelType,
		"metrics":    metrics,
	}).Info("Model evaluation completed")
}

// LogArtifactSaved logs a persisted model artifact.
func (tl *TrainingLogger) LogArtifactSaved(modelID string, path string) {
	tl.WithFields(logrus.Fields{
		"model_id":      modelID,
		"artifact_path": path,
	}).Info("Model artifact saved")
}

// LogTrainingError logs a failed training run.
func (tl *TrainingLogger) LogTrainingError(stage string, errorReason string) {
	tl.WithFields(logrus.Fields{
		"stage":        stage,
		"error_reason": errorReason,
	}).Error("Model training failed")
}
