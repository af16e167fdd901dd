package teams

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/models"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Arsenal":              "arsenal",
		"Arsenal FC":           "arsenal",
		"AFC Bournemouth":      "bournemouth",
		"Sunderland AFC":       "sunderland",
		"  Manchester   City ": "manchester city",
		"LIVERPOOL":            "liverpool",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeName(input), "input %q", input)
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	names := r.Names()

	require.Len(t, names, 19)
	assert.Contains(t, names, "Arsenal")
	assert.Contains(t, names, "Manchester City")
	assert.IsNonDecreasing(t, names)
}

func TestProfileKnownTeam(t *testing.T) {
	r := NewRegistry()
	p := r.Profile("Arsenal")

	assert.True(t, p.Known)
	assert.Equal(t, "Arsenal", p.Name)
	assert.Equal(t, 87.0, p.BaseRating)
	assert.Equal(t, models.FormSequence{3, 3, 1, 3, 3}, p.Form)

	require.NoError(t, models.ValidateRatings("ratings", p.Ratings))
	for _, v := range p.Ratings {
		assert.GreaterOrEqual(t, v, 65.0)
		assert.LessOrEqual(t, v, 95.0)
		assert.Equal(t, math.Round(v*10)/10, v, "ratings are rounded to one decimal")
	}
}

func TestProfileIsDeterministic(t *testing.T) {
	r := NewRegistry()
	first := r.Profile("Liverpool")
	second := r.Profile("Liverpool")

	assert.Equal(t, first.Ratings, second.Ratings)
	assert.Equal(t, first.Form, second.Form)
}

func TestProfileResolvesAliases(t *testing.T) {
	r := NewRegistry()
	a := r.Profile("AFC Bournemouth")
	b := r.Profile("Bournemouth")

	assert.True(t, a.Known)
	assert.Equal(t, b.Ratings, a.Ratings)
	assert.Equal(t, b.Form, a.Form)
}

func TestProfileUnknownTeamDefaults(t *testing.T) {
	r := NewRegistry()
	p := r.Profile("Real Madrid")

	assert.False(t, p.Known)
	assert.Equal(t, "Real Madrid", p.Name)
	assert.Equal(t, 76.0, p.BaseRating)
	assert.Equal(t, models.FormSequence{1, 1, 1, 1, 1}, p.Form)
	require.NoError(t, models.ValidateRatings("ratings", p.Ratings))

	again := r.Profile("Real Madrid")
	assert.Equal(t, p.Ratings, again.Ratings)
}

func TestProfileReturnsCopies(t *testing.T) {
	r := NewRegistry()
	p := r.Profile("Chelsea")
	p.Form[0] = 0

	assert.Equal(t, models.FormSequence{3, 3, 3, 0, 1}, r.Profile("Chelsea").Form)
}

func TestLookupRejectsUnknownTeam(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("Real Madrid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnknownTeam))
	assert.Contains(t, err.Error(), "Real Madrid")

	p, err := r.Lookup("Tottenham Hotspur")
	require.NoError(t, err)
	assert.Equal(t, 85.0, p.BaseRating)
}
