package agent

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

var (
	sharedModelOnce sync.Once
	sharedModel     *trainer.TrainedModel
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testModel(t *testing.T) *trainer.TrainedModel {
	t.Helper()
	sharedModelOnce.Do(func() {
		tr, err := trainer.NewTrainer(trainer.TrainConfig{
			ModelType: models.ModelTypeRF,
			Samples:   100,
			Seed:      5,
		}, quietLogger())
		if err != nil {
			t.Fatalf("failed to build trainer: %v", err)
		}
		sharedModel, err = tr.Run()
		if err != nil {
			t.Fatalf("failed to train test model: %v", err)
		}
	})
	require.NotNil(t, sharedModel)
	return sharedModel
}

func strongHomeInput() models.MatchInput {
	return models.MatchInput{
		HomeTeam:    "Arsenal",
		AwayTeam:    "Chelsea",
		HomeRatings: models.PlayerRatingVector{88, 90, 87, 92, 89, 86, 91, 88, 90, 87, 93},
		AwayRatings: models.PlayerRatingVector{85, 87, 84, 88, 86, 83, 87, 85, 88, 84, 90},
		HomeForm:    models.FormSequence{3, 3, 1, 3, 3},
		AwayForm:    models.FormSequence{3, 1, 0, 3, 1},
	}
}

func TestNewRequiresFittedModel(t *testing.T) {
	_, err := New(nil, quietLogger())
	require.Error(t, err)

	_, err = New(&trainer.TrainedModel{}, quietLogger())
	assert.ErrorIs(t, err, models.ErrUntrainedModel)
}

func TestPredictMatchValidatesInputs(t *testing.T) {
	a, err := New(testModel(t), quietLogger())
	require.NoError(t, err)

	valid := strongHomeInput()

	tests := []struct {
		name   string
		mutate func(*models.MatchInput)
		field  string
	}{
		{
			name:   "ten ratings",
			mutate: func(in *models.MatchInput) { in.HomeRatings = in.HomeRatings[:10] },
			field:  "home_ratings",
		},
		{
			name:   "twelve ratings",
			mutate: func(in *models.MatchInput) { in.AwayRatings = append(in.AwayRatings, 70) },
			field:  "away_ratings",
		},
		{
			name:   "rating below range",
			mutate: func(in *models.MatchInput) { in.HomeRatings[4] = 49.5 },
			field:  "home_ratings",
		},
		{
			name:   "form value two",
			mutate: func(in *models.MatchInput) { in.AwayForm[2] = 2 },
			field:  "away_form",
		},
		{
			name:   "short form",
			mutate: func(in *models.MatchInput) { in.HomeForm = in.HomeForm[:4] },
			field:  "home_form",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			input.HomeRatings = append(models.PlayerRatingVector{}, valid.HomeRatings...)
			input.AwayRatings = append(models.PlayerRatingVector{}, valid.AwayRatings...)
			input.HomeForm = append(models.FormSequence{}, valid.HomeForm...)
			input.AwayForm = append(models.FormSequence{}, valid.AwayForm...)
			tc.mutate(&input)

			_, err := a.PredictMatch(input)
			var v *models.ValidationError
			require.True(t, errors.As(err, &v), "expected validation error, got %v", err)
			assert.Equal(t, tc.field, v.Field)
		})
	}
}

func TestPredictMatchEndToEnd(t *testing.T) {
	a, err := New(testModel(t), quietLogger())
	require.NoError(t, err)

	prediction, err := a.PredictMatch(strongHomeInput())
	require.NoError(t, err)

	assert.Contains(t, []string{models.ResultHomeWin, models.ResultDraw, models.ResultAwayWin}, prediction.Result)
	assert.GreaterOrEqual(t, prediction.HomeScore, 0)
	assert.LessOrEqual(t, prediction.HomeScore, models.MaxRawGoals)
	assert.GreaterOrEqual(t, prediction.AwayScore, 0)
	assert.LessOrEqual(t, prediction.AwayScore, models.MaxRawGoals)

	assert.Equal(t, 89.2, prediction.HomeTeamStrength)
	assert.Equal(t, 86.1, prediction.AwayTeamStrength)
	assert.Equal(t, 3.1, prediction.StrengthAdvantage)
	assert.Equal(t, 13, prediction.HomeFormPoints)
	assert.Equal(t, 8, prediction.AwayFormPoints)
	assert.Equal(t, 5, prediction.FormAdvantage)
	assert.Equal(t, models.ResultLabel(prediction.HomeScore, prediction.AwayScore), prediction.Result)
	assert.False(t, prediction.PredictedAt.IsZero())
	assert.Nil(t, prediction.Probabilities)
}

func TestPredictMatchDetailed(t *testing.T) {
	a, err := New(testModel(t), quietLogger())
	require.NoError(t, err)

	first, err := a.PredictMatchDetailed(strongHomeInput())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, first.HomeScore, 0)
	assert.LessOrEqual(t, first.HomeScore, models.MaxRefinedGoals)
	assert.GreaterOrEqual(t, first.AwayScore, 0)
	assert.LessOrEqual(t, first.AwayScore, models.MaxRefinedGoals)
	assert.False(t, first.HomeScore == 0 && first.AwayScore == 0)
	assert.Equal(t, models.ResultLabel(first.HomeScore, first.AwayScore), first.Result)

	require.NotNil(t, first.Probabilities)
	probs := *first.Probabilities
	assert.InDelta(t, 1.0, probs.Sum(), 1e-6)
	for _, p := range []float64{probs.HomeWin, probs.Draw, probs.AwayWin} {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.Contains(t, []string{models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway}, first.SuggestedOutcome)

	require.NotNil(t, first.FairOdds)
	assert.True(t, first.FairOdds.HomeWin.IsPositive())

	assert.Contains(t, first.Report, "Arsenal vs Chelsea")
	assert.Contains(t, first.Report, "Predicted Score")
	assert.Contains(t, first.Report, "W W D W W")

	// Same fixture, same refinement.
	second, err := a.PredictMatchDetailed(strongHomeInput())
	require.NoError(t, err)
	assert.Equal(t, first.HomeScore, second.HomeScore)
	assert.Equal(t, first.AwayScore, second.AwayScore)
	assert.Equal(t, *first.Probabilities, *second.Probabilities)
}

func TestPredictMatchDetailedRequiresTeamNames(t *testing.T) {
	a, err := New(testModel(t), quietLogger())
	require.NoError(t, err)

	input := strongHomeInput()
	input.HomeTeam = ""

	_, err = a.PredictMatchDetailed(input)
	var v *models.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "home_team", v.Field)
}

func TestBatchPredictPreservesOrderAndIDs(t *testing.T) {
	a, err := New(testModel(t), quietLogger())
	require.NoError(t, err)

	first := strongHomeInput()
	first.MatchID = "fixture-7"
	second := strongHomeInput()
	second.HomeTeam = "Leeds"
	second.AwayTeam = "Everton"

	predictions, err := a.BatchPredict([]models.MatchInput{first, second})
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	assert.Equal(t, "fixture-7", predictions[0].MatchID)
	assert.Equal(t, "Arsenal", predictions[0].HomeTeam)
	assert.Equal(t, "Leeds", predictions[1].HomeTeam)
	assert.NotEmpty(t, predictions[1].MatchID)
	assert.NotEqual(t, predictions[0].MatchID, predictions[1].MatchID)
}

func TestBatchPredictFailsOnInvalidEntry(t *testing.T) {
	a, err := New(testModel(t), quietLogger())
	require.NoError(t, err)

	bad := strongHomeInput()
	bad.HomeForm = models.FormSequence{3, 3, 2, 1, 0}

	_, err = a.BatchPredict([]models.MatchInput{strongHomeInput(), bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match 1")
}

func TestOutcomeProbabilities(t *testing.T) {
	for diff := -4; diff <= 4; diff++ {
		probs := outcomeProbabilities(diff, 2.5, 3)
		assert.InDelta(t, 1.0, probs.Sum(), 1e-9, "diff %d", diff)
		for _, p := range []float64{probs.HomeWin, probs.Draw, probs.AwayWin} {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
	}

	// Positive difference favours the home side and vice versa.
	ahead := outcomeProbabilities(2, 0, 0)
	assert.Greater(t, ahead.HomeWin, ahead.AwayWin)
	behind := outcomeProbabilities(-2, 0, 0)
	assert.Greater(t, behind.AwayWin, behind.HomeWin)

	// A dead tie resolves to the home side by ordering.
	tie := outcomeProbabilities(0, 0, 0)
	assert.Equal(t, tie.HomeWin, tie.AwayWin)
	assert.Equal(t, models.OutcomeHome, tie.Suggested())
}
