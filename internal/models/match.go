package models

import "fmt"

// Input shape constants for rating and form vectors.
const (
	TeamSize   = 11
	FormLength = 5

	MinRating = 50.0
	MaxRating = 99.0

	MaxRawGoals     = 8
	MaxRefinedGoals = 6
)

// Form points per result: win=3, draw=1, loss=0.
const (
	FormLoss = 0
	FormDraw = 1
	FormWin  = 3
)

// PlayerRatingVector holds the strength ratings of a starting eleven.
type PlayerRatingVector []float64

// FormSequence holds a team's last five results as points, most recent last.
type FormSequence []int

// MatchRecord is a single training example: both teams' inputs plus the
// observed goal counts.
type MatchRecord struct {
	HomeRatings PlayerRatingVector `json:"home_ratings"`
	AwayRatings PlayerRatingVector `json:"away_ratings"`
	HomeForm    FormSequence       `json:"home_form"`
	AwayForm    FormSequence       `json:"away_form"`
	HomeGoals   int                `json:"home_goals"`
	AwayGoals   int                `json:"away_goals"`
}

// MatchInput identifies one fixture in a batch prediction request.
type MatchInput struct {
	MatchID     string             `json:"match_id,omitempty"`
	HomeTeam    string             `json:"home_team,omitempty"`
	AwayTeam    string             `json:"away_team,omitempty"`
	HomeRatings PlayerRatingVector `json:"home_ratings"`
	AwayRatings PlayerRatingVector `json:"away_ratings"`
	HomeForm    FormSequence       `json:"home_form"`
	AwayForm    FormSequence       `json:"away_form"`
}

// Mean returns the average rating of the eleven.
func (r PlayerRatingVector) Mean() float64 {
	if len(r) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range r {
		sum += v
	}
	return sum / float64(len(r))
}

// TotalPoints returns the sum of form points over the sequence.
func (f FormSequence) TotalPoints() int {
	total := 0
	for _, v := range f {
		total += v
	}
	return total
}

// ValidateRatings checks that ratings holds exactly TeamSize values inside
// [MinRating, MaxRating]. The field name appears in the error message so
// callers can tell home input from away input.
func ValidateRatings(field string, ratings PlayerRatingVector) error {
	if len(ratings) != TeamSize {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must contain exactly %d values, got %d", field, TeamSize, len(ratings)),
		}
	}
	for i, v := range ratings {
		if v < MinRating || v > MaxRating {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s[%d] must be between %.0f and %.0f, got %.2f", field, i, MinRating, MaxRating, v),
			}
		}
	}
	return nil
}

// ValidateForm checks that form holds exactly FormLength values drawn from
// {0, 1, 3}.
func ValidateForm(field string, form FormSequence) error {
	if len(form) != FormLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must contain exactly %d values, got %d", field, FormLength, len(form)),
		}
	}
	for i, v := range form {
		if v != FormLoss && v != FormDraw && v != FormWin {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s[%d] must be one of 0, 1, 3, got %d", field, i, v),
			}
		}
	}
	return nil
}
