package trainer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sajari/regression"
	"github.com/yourusername/footy-forecast/internal/models"
)

// Evaluate scores the model on the test partition. MAE, RMSE and R2 are
// computed on the continuous outputs; the per-goal MAEs and the scoreline
// rates use the rounded integer predictions the callers actually see.
func Evaluate(model *TrainedModel, split *Split) (models.EvaluationMetrics, error) {
	if split == nil || len(split.XTest) == 0 {
		return models.EvaluationMetrics{}, models.ErrEmptyDataset
	}

	raw := make([][]float64, len(split.XTest))
	rounded := make([][2]int, len(split.XTest))
	for i, row := range split.XTest {
		pred, err := model.PredictRaw(row)
		if err != nil {
			return models.EvaluationMetrics{}, err
		}
		if len(pred) != 2 {
			return models.EvaluationMetrics{}, &models.ComputationError{
				Stage: "evaluate",
				Err:   fmt.Errorf("expected 2 outputs, got %d", len(pred)),
			}
		}
		raw[i] = pred
		rounded[i] = [2]int{clipGoals(pred[0]), clipGoals(pred[1])}
	}

	metrics := models.EvaluationMetrics{
		MAE:            meanAbsoluteError(raw, split.YTest),
		RMSE:           rootMeanSquaredError(raw, split.YTest),
		R2:             rSquared(raw, split.YTest),
		HomeGoalsMAE:   goalMAE(rounded, split.YTest, 0),
		AwayGoalsMAE:   goalMAE(rounded, split.YTest, 1),
		ExactScoreRate: exactScoreRate(rounded, split.YTest),
		WinnerAccuracy: winnerAccuracy(rounded, split.YTest),
		TestSamples:    len(split.XTest),
	}

	if baseline, err := linearBaselineMAE(split, model.Info.FeatureNames); err == nil {
		metrics.BaselineMAE = &baseline
	}

	return metrics, nil
}

// FormatEvaluation renders metrics for terminal output.
func FormatEvaluation(info models.ModelInfo) string {
	m := info.Metrics

	var builder strings.Builder
	builder.WriteString("Model Evaluation\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Model ID: %s\n", info.ID))
	builder.WriteString(fmt.Sprintf("Model Type: %s\n", info.ModelType))
	builder.WriteString(fmt.Sprintf("Training Samples: %d\n", info.TrainingSamples))
	builder.WriteString(fmt.Sprintf("Test Samples: %d\n", m.TestSamples))
	builder.WriteString(fmt.Sprintf("Overall MAE: %.3f goals\n", m.MAE))
	builder.WriteString(fmt.Sprintf("Overall RMSE: %.3f goals\n", m.RMSE))
	builder.WriteString(fmt.Sprintf("R2 Score: %.3f\n", m.R2))
	builder.WriteString(fmt.Sprintf("Home Goals MAE: %.3f goals\n", m.HomeGoalsMAE))
	builder.WriteString(fmt.Sprintf("Away Goals MAE: %.3f goals\n", m.AwayGoalsMAE))
	builder.WriteString(fmt.Sprintf("Exact Score Rate: %.2f%%\n", m.ExactScoreRate*100))
	builder.WriteString(fmt.Sprintf("Winner Accuracy: %.2f%%\n", m.WinnerAccuracy*100))
	if m.BaselineMAE != nil {
		builder.WriteString(fmt.Sprintf("Linear Baseline MAE: %.3f goals\n", *m.BaselineMAE))
	}
	return builder.String()
}

// baselineVars is the predictor set for the linear baseline. The full
// feature set contains exact linear combinations (the diff and total
// columns, the constant home advantage flag) that make a least squares fit
// singular, so the baseline sticks to an independent subset.
var baselineVars = []string{
	"home_mean_rating", "away_mean_rating",
	"home_weighted_form", "away_weighted_form",
	"home_momentum", "away_momentum",
}

// linearBaselineMAE fits one least-squares regression per goal column on the
// train partition and reports its mean absolute error on the test partition.
// It gives the tree ensembles a sanity floor to beat.
func linearBaselineMAE(split *Split, featureNames []string) (float64, error) {
	if len(split.XTrain) == 0 || len(split.XTest) == 0 {
		return 0, models.ErrEmptyDataset
	}

	cols, err := resolveColumns(featureNames, baselineVars)
	if err != nil {
		return 0, err
	}

	observed := [2]string{"home goals", "away goals"}
	total := 0.0
	for target := 0; target < 2; target++ {
		var r regression.Regression
		r.SetObserved(observed[target])
		for i, name := range baselineVars {
			r.SetVar(i, name)
		}
		for i, row := range split.XTrain {
			r.Train(regression.DataPoint(split.YTrain[i][target], projectRow(row, cols)))
		}
		if err := r.Run(); err != nil {
			return 0, fmt.Errorf("failed to fit %s baseline: %w", observed[target], err)
		}

		sum := 0.0
		for i, row := range split.XTest {
			pred, err := r.Predict(projectRow(row, cols))
			if err != nil {
				return 0, fmt.Errorf("failed to predict %s baseline: %w", observed[target], err)
			}
			sum += math.Abs(pred - split.YTest[i][target])
		}
		total += sum / float64(len(split.XTest))
	}
	return total / 2, nil
}

func resolveColumns(featureNames, wanted []string) ([]int, error) {
	index := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		index[name] = i
	}
	cols := make([]int, 0, len(wanted))
	for _, name := range wanted {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("baseline feature %q not in feature set", name)
		}
		cols = append(cols, i)
	}
	return cols, nil
}

func projectRow(row []float64, cols []int) []float64 {
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = row[c]
	}
	return out
}

func meanAbsoluteError(pred, actual [][]float64) float64 {
	total := 0.0
	count := 0
	for i := range pred {
		for j := range pred[i] {
			total += math.Abs(pred[i][j] - actual[i][j])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func rootMeanSquaredError(pred, actual [][]float64) float64 {
	total := 0.0
	count := 0
	for i := range pred {
		for j := range pred[i] {
			diff := pred[i][j] - actual[i][j]
			total += diff * diff
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(total / float64(count))
}

// rSquared averages the per-column coefficients of determination.
func rSquared(pred, actual [][]float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	width := len(pred[0])
	total := 0.0
	for col := 0; col < width; col++ {
		total += columnR2(pred, actual, col)
	}
	return total / float64(width)
}

func columnR2(pred, actual [][]float64, col int) float64 {
	mean := 0.0
	for i := range actual {
		mean += actual[i][col]
	}
	mean /= float64(len(actual))

	ssRes := 0.0
	ssTot := 0.0
	for i := range actual {
		res := actual[i][col] - pred[i][col]
		ssRes += res * res
		dev := actual[i][col] - mean
		ssTot += dev * dev
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func goalMAE(pred [][2]int, actual [][]float64, col int) float64 {
	if len(pred) == 0 {
		return 0
	}
	total := 0.0
	for i := range pred {
		total += math.Abs(float64(pred[i][col]) - actual[i][col])
	}
	return total / float64(len(pred))
}

func exactScoreRate(pred [][2]int, actual [][]float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	hits := 0
	for i := range pred {
		if float64(pred[i][0]) == actual[i][0] && float64(pred[i][1]) == actual[i][1] {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}

func winnerAccuracy(pred [][2]int, actual [][]float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	hits := 0
	for i := range pred {
		predSign := sign(pred[i][0] - pred[i][1])
		actualSign := sign(int(actual[i][0]) - int(actual[i][1]))
		if predSign == actualSign {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
