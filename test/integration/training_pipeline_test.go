//go:build integration

package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/datagen"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/trainer"
	"github.com/yourusername/footy-forecast/test/helpers"
)

// TestTrainingPipelineFromCSV exercises the dataset path end to end: generate,
// persist to CSV, reload, split, fit and evaluate.
func TestTrainingPipelineFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "dataset.csv")

	gen := datagen.New(11)
	records := gen.Dataset(150)
	require.NoError(t, trainer.WriteDatasetCSV(records, csvPath))

	loaded, err := trainer.ReadDatasetCSV(csvPath)
	require.NoError(t, err)
	require.Len(t, loaded, len(records))
	for i, record := range loaded {
		require.NoError(t, models.ValidateRatings("home_ratings", record.HomeRatings), "row %d", i)
		require.NoError(t, models.ValidateRatings("away_ratings", record.AwayRatings), "row %d", i)
		require.NoError(t, models.ValidateForm("home_form", record.HomeForm), "row %d", i)
		require.NoError(t, models.ValidateForm("away_form", record.AwayForm), "row %d", i)
	}
	assert.Equal(t, records[0].HomeGoals, loaded[0].HomeGoals)
	assert.Equal(t, records[0].HomeRatings, loaded[0].HomeRatings)

	tr, err := trainer.NewTrainer(trainer.TrainConfig{ModelType: models.ModelTypeRF}, helpers.QuietLogger())
	require.NoError(t, err)

	split, err := tr.SplitRecords(loaded)
	require.NoError(t, err)
	assert.Len(t, split.XTrain, 120)
	assert.Len(t, split.XTest, 30)

	model, err := tr.Train(split)
	require.NoError(t, err)

	metrics := model.Info.Metrics
	assert.Greater(t, metrics.MAE, 0.0)
	assert.GreaterOrEqual(t, metrics.RMSE, metrics.MAE)
	assert.GreaterOrEqual(t, metrics.WinnerAccuracy, 0.0)
	assert.LessOrEqual(t, metrics.WinnerAccuracy, 1.0)
	assert.Equal(t, 30, metrics.TestSamples)
	require.NotNil(t, metrics.BaselineMAE)

	summary := trainer.FormatEvaluation(model.Info)
	assert.Contains(t, summary, "MAE")
}

// TestArtifactRoundTripKeepsPredictions verifies a saved and reloaded model
// scores fixtures identically to the in-memory original.
func TestArtifactRoundTripKeepsPredictions(t *testing.T) {
	model := helpers.TrainSmallModel(t, models.ModelTypeEnsemble)
	path := helpers.WriteArtifact(t, model, t.TempDir())

	reloaded, err := trainer.LoadModel(path)
	require.NoError(t, err)
	require.True(t, reloaded.Fitted())
	assert.Equal(t, model.Info.ID, reloaded.Info.ID)
	assert.Equal(t, model.Info.FeatureNames, reloaded.Info.FeatureNames)

	original, err := agent.New(model, helpers.QuietLogger())
	require.NoError(t, err)
	restored, err := agent.New(reloaded, helpers.QuietLogger())
	require.NoError(t, err)

	input := helpers.SampleInput("Arsenal", "Chelsea")
	p1, err := original.PredictMatchDetailed(input)
	require.NoError(t, err)
	p2, err := restored.PredictMatchDetailed(input)
	require.NoError(t, err)

	assert.Equal(t, p1.HomeScore, p2.HomeScore)
	assert.Equal(t, p1.AwayScore, p2.AwayScore)
	assert.Equal(t, p1.Result, p2.Result)
	require.NotNil(t, p2.Probabilities)
	assert.InDelta(t, p1.Probabilities.HomeWin, p2.Probabilities.HomeWin, 1e-12)
	assert.InDelta(t, p1.Probabilities.Draw, p2.Probabilities.Draw, 1e-12)
}
