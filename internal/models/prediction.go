package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result labels for a predicted scoreline.
const (
	ResultHomeWin = "Home Win"
	ResultDraw    = "Draw"
	ResultAwayWin = "Away Win"
)

// Suggested outcome keys (the result label without its "_win" suffix).
const (
	OutcomeHome = "home"
	OutcomeDraw = "draw"
	OutcomeAway = "away"
)

// OutcomeProbabilities is the blended home/draw/away distribution. Each value
// lies in [0, 1] and the three sum to 1 within floating point tolerance.
type OutcomeProbabilities struct {
	HomeWin float64 `json:"home_win" validate:"gte=0,lte=1"`
	Draw    float64 `json:"draw" validate:"gte=0,lte=1"`
	AwayWin float64 `json:"away_win" validate:"gte=0,lte=1"`
}

// Sum returns the total probability mass.
func (p OutcomeProbabilities) Sum() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}

// Suggested returns the most probable outcome key. Ties resolve in the order
// home, draw, away.
func (p OutcomeProbabilities) Suggested() string {
	if p.HomeWin >= p.Draw && p.HomeWin >= p.AwayWin {
		return OutcomeHome
	}
	if p.Draw >= p.AwayWin {
		return OutcomeDraw
	}
	return OutcomeAway
}

// FairOdds holds the no-margin decimal odds implied by a probability triple.
type FairOdds struct {
	HomeWin decimal.Decimal `json:"home_win"`
	Draw    decimal.Decimal `json:"draw"`
	AwayWin decimal.Decimal `json:"away_win"`
}

// FairOddsFrom converts outcome probabilities to decimal odds rounded to two
// places. A probability at or below zero yields zero odds.
func FairOddsFrom(p OutcomeProbabilities) FairOdds {
	return FairOdds{
		HomeWin: impliedOdds(p.HomeWin),
		Draw:    impliedOdds(p.Draw),
		AwayWin: impliedOdds(p.AwayWin),
	}
}

func impliedOdds(prob float64) decimal.Decimal {
	if prob <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(1 / prob).Round(2)
}

// MatchPrediction is the outcome of a single fixture prediction. Probability
// fields are populated only by the detailed prediction path.
type MatchPrediction struct {
	MatchID           string                `json:"match_id,omitempty"`
	HomeTeam          string                `json:"home_team,omitempty"`
	AwayTeam          string                `json:"away_team,omitempty"`
	HomeScore         int                   `json:"home_score"`
	AwayScore         int                   `json:"away_score"`
	Result            string                `json:"result"`
	HomeTeamStrength  float64               `json:"home_team_strength"`
	AwayTeamStrength  float64               `json:"away_team_strength"`
	HomeFormPoints    int                   `json:"home_form_points"`
	AwayFormPoints    int                   `json:"away_form_points"`
	StrengthAdvantage float64               `json:"strength_advantage"`
	FormAdvantage     int                   `json:"form_advantage"`
	Probabilities     *OutcomeProbabilities `json:"probabilities,omitempty"`
	SuggestedOutcome  string                `json:"suggested_outcome,omitempty"`
	FairOdds          *FairOdds             `json:"fair_odds,omitempty"`
	Report            string                `json:"report,omitempty"`
	PredictedAt       time.Time             `json:"predicted_at"`
}

// ResultLabel derives the categorical result from a scoreline.
func ResultLabel(homeGoals, awayGoals int) string {
	switch {
	case homeGoals > awayGoals:
		return ResultHomeWin
	case homeGoals < awayGoals:
		return ResultAwayWin
	default:
		return ResultDraw
	}
}
