package trainer

import (
	"fmt"
	"math"

	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/regress"
)

// TrainedModel owns the fitted regressors together with the feature order and
// evaluation metrics they were produced with. It is immutable after training
// and safe for concurrent inference.
type TrainedModel struct {
	Info    models.ModelInfo       `json:"info"`
	Forest  *regress.MultiForest   `json:"forest,omitempty"`
	Booster *regress.MultiBoosting `json:"booster,omitempty"`
}

// Fitted reports whether every regressor the model type requires is trained.
func (m *TrainedModel) Fitted() bool {
	if m == nil {
		return false
	}
	switch m.Info.ModelType {
	case models.ModelTypeRF:
		return m.Forest != nil && m.Forest.Fitted()
	case models.ModelTypeGBT:
		return m.Booster != nil && m.Booster.Fitted()
	case models.ModelTypeEnsemble:
		return m.Forest != nil && m.Forest.Fitted() &&
			m.Booster != nil && m.Booster.Fitted()
	}
	return false
}

// PredictRaw returns the continuous [home goals, away goals] estimate. For
// the ensemble type the two regressors are averaged element-wise.
func (m *TrainedModel) PredictRaw(featureRow []float64) ([]float64, error) {
	if !m.Fitted() {
		return nil, models.ErrUntrainedModel
	}
	if len(featureRow) != len(m.Info.FeatureNames) {
		return nil, fmt.Errorf("%w: got %d features, model expects %d",
			models.ErrFeatureMismatch, len(featureRow), len(m.Info.FeatureNames))
	}

	var raw []float64
	switch m.Info.ModelType {
	case models.ModelTypeRF:
		raw = m.Forest.Predict(featureRow)
	case models.ModelTypeGBT:
		raw = m.Booster.Predict(featureRow)
	default:
		rf := m.Forest.Predict(featureRow)
		gb := m.Booster.Predict(featureRow)
		raw = make([]float64, len(rf))
		for i := range raw {
			raw[i] = (rf[i] + gb[i]) / 2
		}
	}

	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &models.ComputationError{
				Stage: "predict",
				Err:   fmt.Errorf("non-finite estimate %v for target %d", v, i),
			}
		}
	}
	return raw, nil
}

// PredictScores rounds the raw estimate to integer goals clipped to [0, 8].
func (m *TrainedModel) PredictScores(featureRow []float64) (int, int, error) {
	raw, err := m.PredictRaw(featureRow)
	if err != nil {
		return 0, 0, err
	}
	if len(raw) != 2 {
		return 0, 0, &models.ComputationError{
			Stage: "predict",
			Err:   fmt.Errorf("expected 2 outputs, got %d", len(raw)),
		}
	}
	return clipGoals(raw[0]), clipGoals(raw[1]), nil
}

func clipGoals(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > models.MaxRawGoals {
		return models.MaxRawGoals
	}
	return rounded
}
