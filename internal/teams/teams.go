// Package teams provides deterministic squad profiles for named teams, so
// predictions by team name stay stable across calls without stored data.
package teams

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Profile generation bounds. Player ratings draw around the team's base
// strength and stay inside a narrower band than the global rating range.
const (
	profileRatingStd = 3.2
	profileMinRating = 65.0
	profileMaxRating = 95.0

	defaultBaseRating = 76.0
)

var defaultForm = models.FormSequence{1, 1, 1, 1, 1}

type teamSeed struct {
	display string
	base    float64
	form    models.FormSequence
}

var seeds = map[string]teamSeed{
	"arsenal":                 {display: "Arsenal", base: 87, form: models.FormSequence{3, 3, 1, 3, 3}},
	"aston villa":             {display: "Aston Villa", base: 82, form: models.FormSequence{3, 1, 3, 0, 1}},
	"bournemouth":             {display: "Bournemouth", base: 76, form: models.FormSequence{1, 3, 0, 1, 0}},
	"brentford":               {display: "Brentford", base: 78, form: models.FormSequence{3, 3, 0, 1, 3}},
	"brighton":                {display: "Brighton", base: 79, form: models.FormSequence{1, 3, 1, 0, 3}},
	"chelsea":                 {display: "Chelsea", base: 84, form: models.FormSequence{3, 3, 3, 0, 1}},
	"crystal palace":          {display: "Crystal Palace", base: 75, form: models.FormSequence{1, 0, 1, 3, 0}},
	"everton":                 {display: "Everton", base: 77, form: models.FormSequence{0, 1, 3, 0, 1}},
	"fulham":                  {display: "Fulham", base: 78, form: models.FormSequence{1, 1, 0, 3, 1}},
	"liverpool":               {display: "Liverpool", base: 88, form: models.FormSequence{3, 3, 3, 1, 3}},
	"manchester city":         {display: "Manchester City", base: 90, form: models.FormSequence{3, 3, 1, 3, 3}},
	"manchester united":       {display: "Manchester United", base: 83, form: models.FormSequence{3, 1, 0, 3, 3}},
	"newcastle united":        {display: "Newcastle United", base: 82, form: models.FormSequence{3, 1, 3, 1, 0}},
	"nottingham forest":       {display: "Nottingham Forest", base: 74, form: models.FormSequence{0, 1, 0, 1, 0}},
	"southampton":             {display: "Southampton", base: 73, form: models.FormSequence{1, 1, 3, 0, 1}},
	"sunderland":              {display: "Sunderland", base: 72, form: models.FormSequence{3, 3, 1, 0, 3}},
	"tottenham hotspur":       {display: "Tottenham Hotspur", base: 85, form: models.FormSequence{3, 0, 3, 1, 3}},
	"west ham united":         {display: "West Ham United", base: 80, form: models.FormSequence{1, 3, 1, 0, 3}},
	"wolverhampton wanderers": {display: "Wolverhampton Wanderers", base: 76, form: models.FormSequence{1, 0, 1, 1, 3}},
}

// Profile is a synthetic squad for one team: ratings drawn deterministically
// around the team's base strength plus its recent form.
type Profile struct {
	Name       string                    `json:"name"`
	BaseRating float64                   `json:"base_rating"`
	Known      bool                      `json:"known"`
	Ratings    models.PlayerRatingVector `json:"ratings"`
	Form       models.FormSequence       `json:"form"`
}

// Registry resolves team names to profiles.
type Registry struct {
	names []string
}

// NewRegistry creates the built-in team registry.
func NewRegistry() *Registry {
	names := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		names = append(names, seed.display)
	}
	sort.Strings(names)
	return &Registry{names: names}
}

// Names lists the known team display names in alphabetical order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Known reports whether the name resolves to a built-in team.
func (r *Registry) Known(name string) bool {
	_, ok := seeds[NormalizeName(name)]
	return ok
}

// Profile returns the squad profile for the team. Unknown names fall back to
// an average-strength squad with neutral form, so name-based predictions
// always have inputs to work with.
func (r *Registry) Profile(name string) Profile {
	key := NormalizeName(name)
	seed, ok := seeds[key]
	if !ok {
		seed = teamSeed{display: name, base: defaultBaseRating, form: defaultForm}
	}

	return Profile{
		Name:       seed.display,
		BaseRating: seed.base,
		Known:      ok,
		Ratings:    squadRatings(key, seed.base),
		Form:       append(models.FormSequence{}, seed.form...),
	}
}

// Lookup is the strict variant of Profile for callers that must reject
// unknown teams.
func (r *Registry) Lookup(name string) (Profile, error) {
	if !r.Known(name) {
		return Profile{}, fmt.Errorf("%w: %q", models.ErrUnknownTeam, name)
	}
	return r.Profile(name), nil
}

// NormalizeName lowercases a team name and strips club suffix tokens, so
// "AFC Bournemouth" and "Bournemouth" resolve to the same profile.
func NormalizeName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	kept := fields[:0]
	for _, field := range fields {
		if field == "fc" || field == "afc" {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// squadRatings draws eleven ratings around the base strength, seeded by the
// normalized team name so repeated lookups return the same squad.
func squadRatings(key string, base float64) models.PlayerRatingVector {
	h := fnv.New64a()
	h.Write([]byte(key))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	ratings := make(models.PlayerRatingVector, models.TeamSize)
	for i := range ratings {
		v := base + rng.NormFloat64()*profileRatingStd
		if v < profileMinRating {
			v = profileMinRating
		}
		if v > profileMaxRating {
			v = profileMaxRating
		}
		ratings[i] = math.Round(v*10) / 10
	}
	return ratings
}
