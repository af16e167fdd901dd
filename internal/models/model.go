package models

import (
	"time"

	"github.com/google/uuid"
)

// Supported model families.
const (
	ModelTypeRF       = "rf"
	ModelTypeGBT      = "gbt"
	ModelTypeEnsemble = "ensemble"
)

// EvaluationMetrics summarizes model accuracy on a held-out test split.
// MAE, RMSE and R2 are computed on the continuous regressor outputs; the
// scoreline rates use the rounded integer predictions.
type EvaluationMetrics struct {
	MAE            float64  `json:"mae"`
	RMSE           float64  `json:"rmse"`
	R2             float64  `json:"r2"`
	HomeGoalsMAE   float64  `json:"home_goals_mae"`
	AwayGoalsMAE   float64  `json:"away_goals_mae"`
	ExactScoreRate float64  `json:"exact_score_rate"`
	WinnerAccuracy float64  `json:"winner_accuracy"`
	BaselineMAE    *float64 `json:"baseline_mae,omitempty"`
	TestSamples    int      `json:"test_samples"`
}

// ModelInfo describes a trained artifact without exposing its regressors.
type ModelInfo struct {
	ID              uuid.UUID         `json:"id"`
	ModelType       string            `json:"model_type" validate:"required,oneof=rf gbt ensemble"`
	FeatureNames    []string          `json:"feature_names"`
	Metrics         EvaluationMetrics `json:"metrics"`
	TrainingSamples int               `json:"training_samples"`
	TrainedAt       time.Time         `json:"trained_at"`
}
