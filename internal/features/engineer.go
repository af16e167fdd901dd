// Package features converts raw ratings and form into model-ready vectors.
package features

import (
	"math"
	"sort"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Per-team feature suffixes in canonical column order.
var (
	statKeys = []string{
		"mean_rating", "median_rating", "max_rating", "min_rating",
		"std_rating", "rating_range", "top3_avg", "bottom3_avg",
	}
	formKeys = []string{
		"total_points", "wins", "draws", "losses",
		"win_rate", "weighted_form", "momentum",
	}
	comparativeKeys = []string{
		"rating_diff", "form_diff", "top3_diff", "momentum_diff",
		"total_strength", "strength_ratio", "home_advantage",
	}
)

// formWeights weight the five results oldest to newest.
var formWeights = []float64{0.1, 0.15, 0.2, 0.25, 0.3}

// ratioEpsilon keeps strength_ratio finite for a zero away mean.
const ratioEpsilon = 1e-6

// TeamStatistics aggregates one side's player ratings.
type TeamStatistics struct {
	MeanRating   float64
	MedianRating float64
	MaxRating    float64
	MinRating    float64
	StdRating    float64
	RatingRange  float64
	Top3Avg      float64
	Bottom3Avg   float64
}

func (s TeamStatistics) ordered() []float64 {
	return []float64{
		s.MeanRating, s.MedianRating, s.MaxRating, s.MinRating,
		s.StdRating, s.RatingRange, s.Top3Avg, s.Bottom3Avg,
	}
}

// FormFeatures aggregates one side's recent results.
type FormFeatures struct {
	TotalPoints  float64
	Wins         float64
	Draws        float64
	Losses       float64
	WinRate      float64
	WeightedForm float64
	Momentum     float64
}

func (f FormFeatures) ordered() []float64 {
	return []float64{
		f.TotalPoints, f.Wins, f.Draws, f.Losses,
		f.WinRate, f.WeightedForm, f.Momentum,
	}
}

// Engineer derives fixed-order feature vectors from raw match inputs. The
// column order is fixed at construction and must be identical between
// training and inference.
type Engineer struct {
	featureNames []string
}

// New creates an Engineer with the canonical column order.
func New() *Engineer {
	names := make([]string, 0, 2*(len(statKeys)+len(formKeys))+len(comparativeKeys))
	for _, k := range statKeys {
		names = append(names, "home_"+k)
	}
	for _, k := range formKeys {
		names = append(names, "home_"+k)
	}
	for _, k := range statKeys {
		names = append(names, "away_"+k)
	}
	for _, k := range formKeys {
		names = append(names, "away_"+k)
	}
	names = append(names, comparativeKeys...)
	return &Engineer{featureNames: names}
}

// FeatureNames returns a copy of the canonical column order.
func (e *Engineer) FeatureNames() []string {
	return append([]string(nil), e.featureNames...)
}

// FeatureCount returns the width of every engineered vector.
func (e *Engineer) FeatureCount() int {
	return len(e.featureNames)
}

// TeamStatistics computes aggregate statistics over a rating vector.
// StdRating is the population standard deviation.
func (e *Engineer) TeamStatistics(ratings models.PlayerRatingVector) TeamStatistics {
	values := append([]float64(nil), ratings...)
	sort.Float64s(values)

	m := mean(values)
	topN := 3
	if len(values) < topN {
		topN = len(values)
	}

	return TeamStatistics{
		MeanRating:   m,
		MedianRating: median(values),
		MaxRating:    values[len(values)-1],
		MinRating:    values[0],
		StdRating:    populationStd(values, m),
		RatingRange:  values[len(values)-1] - values[0],
		Top3Avg:      mean(values[len(values)-topN:]),
		Bottom3Avg:   mean(values[:topN]),
	}
}

// FormFeatures computes form aggregates from a sequence of exactly
// models.FormLength results, most recent last.
func (e *Engineer) FormFeatures(form models.FormSequence) FormFeatures {
	var wins, draws, losses, total int
	for _, v := range form {
		total += v
		switch v {
		case models.FormWin:
			wins++
		case models.FormDraw:
			draws++
		default:
			losses++
		}
	}

	weighted := 0.0
	for i, v := range form {
		weighted += float64(v) * formWeights[i]
	}

	// Momentum compares the last two games against the first three.
	momentum := meanInts(form[len(form)-2:]) - meanInts(form[:3])

	return FormFeatures{
		TotalPoints:  float64(total),
		Wins:         float64(wins),
		Draws:        float64(draws),
		Losses:       float64(losses),
		WinRate:      float64(wins) / float64(len(form)),
		WeightedForm: weighted,
		Momentum:     momentum,
	}
}

// FromRaw engineers the full feature vector for one fixture, in canonical
// column order. Inputs must already be validated; FromRaw itself is a pure
// function with no hidden randomness.
func (e *Engineer) FromRaw(homeRatings, awayRatings models.PlayerRatingVector, homeForm, awayForm models.FormSequence) []float64 {
	homeStats := e.TeamStatistics(homeRatings)
	awayStats := e.TeamStatistics(awayRatings)
	homeFormFeats := e.FormFeatures(homeForm)
	awayFormFeats := e.FormFeatures(awayForm)

	values := make([]float64, 0, len(e.featureNames))
	values = append(values, homeStats.ordered()...)
	values = append(values, homeFormFeats.ordered()...)
	values = append(values, awayStats.ordered()...)
	values = append(values, awayFormFeats.ordered()...)
	values = append(values,
		homeStats.MeanRating-awayStats.MeanRating,
		homeFormFeats.TotalPoints-awayFormFeats.TotalPoints,
		homeStats.Top3Avg-awayStats.Top3Avg,
		homeFormFeats.Momentum-awayFormFeats.Momentum,
		homeStats.MeanRating+awayStats.MeanRating,
		homeStats.MeanRating/(awayStats.MeanRating+ratioEpsilon),
		1,
	)
	return values
}

// Matrix engineers a full dataset into a feature matrix and a target matrix
// with columns [home_goals, away_goals].
func (e *Engineer) Matrix(records []models.MatchRecord) (X [][]float64, y [][]float64) {
	X = make([][]float64, len(records))
	y = make([][]float64, len(records))
	for i, rec := range records {
		X[i] = e.FromRaw(rec.HomeRatings, rec.AwayRatings, rec.HomeForm, rec.AwayForm)
		y[i] = []float64{float64(rec.HomeGoals), float64(rec.AwayGoals)}
	}
	return X, y
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func populationStd(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
