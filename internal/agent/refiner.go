package agent

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Refinement bounds. Totals and differences are clamped before rounding so
// refined scorelines stay inside [0, 6].
const (
	minRefinedTotal = 1.6
	maxRefinedTotal = 7.0
	maxRefinedDiff  = 4.5
	nearTieBand     = 0.35
)

// RefineScoreline blends the model scoreline with matchup-seeded noise and
// the strength/form edges. Raw regressor output clusters on a handful of
// scorelines; the perturbation spreads fixtures apart while staying
// deterministic per ordered (home, away) pair, so the same fixture always
// refines the same way and swapping sides changes the draw.
func RefineScoreline(homeTeam, awayTeam string, baseHome, baseAway int, strengthEdge, formEdge float64) (int, int) {
	rng := rand.New(rand.NewSource(matchupSeed(homeTeam, awayTeam)))

	baseTotal := float64(baseHome + baseAway)
	if baseTotal < 2 {
		baseTotal = 2
	}
	expectedDiff := float64(baseHome-baseAway) + 0.12*strengthEdge + 0.08*formEdge

	styleVariation := -0.35 + rng.Float64()*0.9
	noisyTotal := clamp(baseTotal+styleVariation+rng.NormFloat64()*0.65, minRefinedTotal, maxRefinedTotal)

	edgeHint := math.Tanh((0.18*strengthEdge + 0.12*formEdge) / 4)
	noisyDiff := clamp(expectedDiff+edgeHint+rng.NormFloat64()*0.75, -maxRefinedDiff, maxRefinedDiff)

	// Near ties get a seeded nudge so tight fixtures don't all collapse into
	// the same repeated draw scoreline.
	if math.Abs(noisyDiff) < nearTieBand {
		nudge := rng.NormFloat64() * 0.4
		if nudge == 0 {
			nudge = nearTieBand
			if rng.Float64() <= 0.5 {
				nudge = -nearTieBand
			}
		}
		direction := edgeHint
		if direction == 0 {
			direction = nudge
		}
		noisyDiff += nudge + nearTieBand*signOf(direction)
	}

	homeEst := noisyTotal/2 + noisyDiff/2
	awayEst := noisyTotal - homeEst

	homeScore := clipRefined(homeEst)
	awayScore := clipRefined(awayEst)

	if homeScore == awayScore {
		bias := edgeHint + rng.NormFloat64()*0.15
		switch {
		case noisyDiff > 0.4 || bias > 0.15:
			if homeScore < models.MaxRefinedGoals {
				homeScore++
			}
		case noisyDiff < -0.4 || bias < -0.15:
			if awayScore < models.MaxRefinedGoals {
				awayScore++
			}
		}
	}

	if homeScore == 0 && awayScore == 0 {
		homeScore = 1
	}
	return homeScore, awayScore
}

// matchupSeed hashes the ordered team pair with FNV-1a. The hash is stable
// across processes, which is what keeps refinement reproducible per fixture.
func matchupSeed(homeTeam, awayTeam string) int64 {
	h := fnv.New64a()
	h.Write([]byte(homeTeam))
	h.Write([]byte("-"))
	h.Write([]byte(awayTeam))
	return int64(h.Sum64())
}

func clipRefined(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > models.MaxRefinedGoals {
		return models.MaxRefinedGoals
	}
	return rounded
}

func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
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
