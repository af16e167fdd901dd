// Package agent orchestrates input validation, feature engineering, model
// inference and scoreline refinement for match predictions.
package agent

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/footy-forecast/internal/features"
	"github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

// Probability transform tuning. Carried over unchanged from the calibration
// the scoreline heuristics were tuned against.
const (
	probTemperature = 1.65
	blendModel      = 0.72
	blendPrior      = 0.28
	probFloor       = 0.05
	probCeil        = 0.9
)

var neutralPrior = models.OutcomeProbabilities{HomeWin: 0.37, Draw: 0.26, AwayWin: 0.37}

// Agent produces match predictions from an injected trained model. It holds
// no mutable state and is safe for concurrent use.
type Agent struct {
	model    *trainer.TrainedModel
	engineer *features.Engineer
	logger   *logger.PredictionLogger
}

// New creates a prediction agent around a trained model.
func New(model *trainer.TrainedModel, log *logrus.Logger) (*Agent, error) {
	if model == nil {
		return nil, fmt.Errorf("trained model is required")
	}
	if !model.Fitted() {
		return nil, models.ErrUntrainedModel
	}
	if log == nil {
		log = logrus.New()
	}

	return &Agent{
		model:    model,
		engineer: features.New(),
		logger:   logger.NewPredictionLogger(log),
	}, nil
}

// Model returns the model the agent serves.
func (a *Agent) Model() *trainer.TrainedModel {
	return a.model
}

// PredictMatch validates the inputs, runs inference and derives the result
// label plus the strength and form insights.
func (a *Agent) PredictMatch(input models.MatchInput) (*models.MatchPrediction, error) {
	start := time.Now()
	if err := validateInput(input); err != nil {
		var v *models.ValidationError
		if errors.As(err, &v) {
			a.logger.LogValidationFailure(v.Field, v.Message)
		}
		return nil, err
	}

	row := a.engineer.FromRaw(input.HomeRatings, input.AwayRatings, input.HomeForm, input.AwayForm)
	homeScore, awayScore, err := a.model.PredictScores(row)
	if err != nil {
		a.logger.LogPredictionError(input.HomeTeam, input.AwayTeam, err.Error())
		return nil, err
	}

	homeStrength := input.HomeRatings.Mean()
	awayStrength := input.AwayRatings.Mean()
	homePoints := input.HomeForm.TotalPoints()
	awayPoints := input.AwayForm.TotalPoints()

	prediction := &models.MatchPrediction{
		MatchID:           input.MatchID,
		HomeTeam:          input.HomeTeam,
		AwayTeam:          input.AwayTeam,
		HomeScore:         homeScore,
		AwayScore:         awayScore,
		Result:            models.ResultLabel(homeScore, awayScore),
		HomeTeamStrength:  round1(homeStrength),
		AwayTeamStrength:  round1(awayStrength),
		HomeFormPoints:    homePoints,
		AwayFormPoints:    awayPoints,
		StrengthAdvantage: round1(homeStrength - awayStrength),
		FormAdvantage:     homePoints - awayPoints,
		PredictedAt:       time.Now().UTC(),
	}

	a.logger.LogPrediction(input.HomeTeam, input.AwayTeam, homeScore, awayScore,
		prediction.Result, float64(time.Since(start).Microseconds())/1000)
	return prediction, nil
}

// PredictMatchDetailed refines the raw scoreline with the matchup-seeded
// heuristic, derives outcome probabilities and fair odds, and attaches a
// formatted report. Team names are required: they seed the refinement.
func (a *Agent) PredictMatchDetailed(input models.MatchInput) (*models.MatchPrediction, error) {
	if input.HomeTeam == "" {
		return nil, &models.ValidationError{Field: "home_team", Message: "home_team is required for detailed predictions"}
	}
	if input.AwayTeam == "" {
		return nil, &models.ValidationError{Field: "away_team", Message: "away_team is required for detailed predictions"}
	}

	prediction, err := a.PredictMatch(input)
	if err != nil {
		return nil, err
	}

	homeScore, awayScore := RefineScoreline(input.HomeTeam, input.AwayTeam,
		prediction.HomeScore, prediction.AwayScore,
		prediction.StrengthAdvantage, float64(prediction.FormAdvantage))
	prediction.HomeScore = homeScore
	prediction.AwayScore = awayScore
	prediction.Result = models.ResultLabel(homeScore, awayScore)

	probs := outcomeProbabilities(homeScore-awayScore,
		prediction.StrengthAdvantage, float64(prediction.FormAdvantage))
	odds := models.FairOddsFrom(probs)

	prediction.Probabilities = &probs
	prediction.SuggestedOutcome = probs.Suggested()
	prediction.FairOdds = &odds
	prediction.Report = buildReport(prediction, input.HomeForm, input.AwayForm)
	return prediction, nil
}

// BatchPredict runs PredictMatch per entry, preserving input order. Entries
// without a caller-supplied match ID are assigned one.
func (a *Agent) BatchPredict(inputs []models.MatchInput) ([]*models.MatchPrediction, error) {
	start := time.Now()
	predictions := make([]*models.MatchPrediction, 0, len(inputs))
	for i, input := range inputs {
		if input.MatchID == "" {
			input.MatchID = uuid.New().String()
		}
		prediction, err := a.PredictMatch(input)
		if err != nil {
			a.logger.LogBatchPrediction(len(inputs), len(inputs)-i, float64(time.Since(start).Microseconds())/1000)
			return nil, fmt.Errorf("match %d (%s): %w", i, input.MatchID, err)
		}
		predictions = append(predictions, prediction)
	}
	a.logger.LogBatchPrediction(len(inputs), 0, float64(time.Since(start).Microseconds())/1000)
	return predictions, nil
}

// outcomeProbabilities converts a refined goal difference plus the strength
// and form edges into a home/draw/away distribution: a temperature-softened
// softmax over the difference, blended with a neutral prior so no outcome
// locks in at extreme certainty.
func outcomeProbabilities(diff int, strengthEdge, formEdge float64) models.OutcomeProbabilities {
	tieBias := math.Tanh((0.6*strengthEdge + 0.4*formEdge) / 20)

	homeLogit := (float64(diff) + tieBias) / probTemperature
	awayLogit := (-float64(diff) - tieBias) / probTemperature
	drawLogit := -math.Abs(float64(diff))/(probTemperature*0.9) - math.Abs(tieBias)*0.35

	rawHome := math.Exp(homeLogit)
	rawAway := math.Exp(awayLogit)
	rawDraw := 0.35*math.Exp(drawLogit) + 0.12
	total := rawHome + rawAway + rawDraw

	blended := models.OutcomeProbabilities{
		HomeWin: clampProb(blendModel*(rawHome/total) + blendPrior*neutralPrior.HomeWin),
		Draw:    clampProb(blendModel*(rawDraw/total) + blendPrior*neutralPrior.Draw),
		AwayWin: clampProb(blendModel*(rawAway/total) + blendPrior*neutralPrior.AwayWin),
	}

	sum := blended.Sum()
	blended.HomeWin /= sum
	blended.Draw /= sum
	blended.AwayWin /= sum
	return blended
}

func validateInput(input models.MatchInput) error {
	if err := models.ValidateRatings("home_ratings", input.HomeRatings); err != nil {
		return err
	}
	if err := models.ValidateRatings("away_ratings", input.AwayRatings); err != nil {
		return err
	}
	if err := models.ValidateForm("home_form", input.HomeForm); err != nil {
		return err
	}
	return models.ValidateForm("away_form", input.AwayForm)
}

func clampProb(v float64) float64 {
	if v < probFloor {
		return probFloor
	}
	if v > probCeil {
		return probCeil
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
