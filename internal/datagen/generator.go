// Package datagen produces synthetic training data for the score models.
package datagen

import (
	"math"
	"math/rand"
	"time"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Default sampling parameters for player ratings.
const (
	DefaultRatingMean = 75.0
	DefaultRatingStd  = 10.0

	baseExpectedGoals  = 1.5
	homeAdvantageGoals = 0.3
	goalNoiseStd       = 0.3
	neutralFormPoints  = 7.5
)

// Form outcome weights: win 0.40, draw 0.30, loss 0.30.
var formOutcomes = []struct {
	points int
	prob   float64
}{
	{models.FormWin, 0.40},
	{models.FormDraw, 0.30},
	{models.FormLoss, 0.30},
}

// Generator produces randomized match records. It is seeded at construction;
// successive calls advance shared generator state, so reproducing a sequence
// requires a fresh Generator with the same seed and the same call order.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator. A zero seed selects a time-based seed.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// PlayerRatings draws n ratings from Normal(mean, std), clipped to the valid
// rating range.
func (g *Generator) PlayerRatings(n int, mean, std float64) models.PlayerRatingVector {
	ratings := make(models.PlayerRatingVector, n)
	for i := range ratings {
		v := g.rng.NormFloat64()*std + mean
		ratings[i] = clamp(v, models.MinRating, models.MaxRating)
	}
	return ratings
}

// RecentForm draws five results weighted by formOutcomes, most recent last.
func (g *Generator) RecentForm() models.FormSequence {
	form := make(models.FormSequence, models.FormLength)
	for i := range form {
		form[i] = g.sampleFormPoints()
	}
	return form
}

func (g *Generator) sampleFormPoints() int {
	u := g.rng.Float64()
	cum := 0.0
	for _, o := range formOutcomes {
		cum += o.prob
		if u < cum {
			return o.points
		}
	}
	return formOutcomes[len(formOutcomes)-1].points
}

// ExpectedGoals computes the mean of one side's goal distribution: a base of
// 1.5 goals shifted by the strength gap, the side's form relative to a
// neutral 7.5 points, home advantage, and Gaussian noise, floored at zero.
func (g *Generator) ExpectedGoals(strength, oppStrength, formPoints float64, isHome bool) float64 {
	expected := baseExpectedGoals
	expected += (strength - oppStrength) / 10 * 0.15
	expected += (formPoints - neutralFormPoints) / neutralFormPoints * 0.3
	if isHome {
		expected += homeAdvantageGoals
	}
	expected += g.rng.NormFloat64() * goalNoiseStd
	if expected < 0 {
		expected = 0
	}
	return expected
}

// SampleGoals draws a Poisson goal count capped at the raw goal maximum.
func (g *Generator) SampleGoals(expected float64) int {
	goals := g.poisson(expected)
	if goals > models.MaxRawGoals {
		goals = models.MaxRawGoals
	}
	return goals
}

// poisson uses Knuth's algorithm; expected goals stay far below the regime
// where a normal approximation would be needed.
func (g *Generator) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	L := math.Exp(-lambda)
	k := 0
	p := 1.0
	for p > L {
		k++
		p *= g.rng.Float64()
	}
	return k - 1
}

// Match generates one independent training record.
func (g *Generator) Match() models.MatchRecord {
	homeRatings := g.PlayerRatings(models.TeamSize, DefaultRatingMean, DefaultRatingStd)
	awayRatings := g.PlayerRatings(models.TeamSize, DefaultRatingMean, DefaultRatingStd)
	homeForm := g.RecentForm()
	awayForm := g.RecentForm()

	homeStrength := homeRatings.Mean()
	awayStrength := awayRatings.Mean()

	homeExpected := g.ExpectedGoals(homeStrength, awayStrength, float64(homeForm.TotalPoints()), true)
	awayExpected := g.ExpectedGoals(awayStrength, homeStrength, float64(awayForm.TotalPoints()), false)

	return models.MatchRecord{
		HomeRatings: homeRatings,
		AwayRatings: awayRatings,
		HomeForm:    homeForm,
		AwayForm:    awayForm,
		HomeGoals:   g.SampleGoals(homeExpected),
		AwayGoals:   g.SampleGoals(awayExpected),
	}
}

// Dataset generates n independent match records. Rows carry no temporal or
// cross-row dependency.
func (g *Generator) Dataset(n int) []models.MatchRecord {
	records := make([]models.MatchRecord, n)
	for i := range records {
		records[i] = g.Match()
	}
	return records
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
