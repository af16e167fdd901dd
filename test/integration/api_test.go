//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/server"
	"github.com/yourusername/footy-forecast/test/helpers"
)

func apiConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "footy-forecast", Environment: "development", LogLevel: "error"},
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Model:    config.ModelConfig{Type: models.ModelTypeEnsemble, ArtifactPath: "unused"},
		Training: config.TrainingConfig{Samples: 300, Seed: 7},
		Cache:    config.CacheConfig{TTLSeconds: 60, CleanupSeconds: 120},
	}
}

// TestServerWithoutModel checks the degraded mode: health stays up, readiness
// and predictions report the missing model.
func TestServerWithoutModel(t *testing.T) {
	srv := server.New(apiConfig(), nil, helpers.QuietLogger())
	router := srv.Router()

	rec := helpers.MakeJSONRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = helpers.MakeJSONRequest(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = helpers.MakeJSONRequest(t, router, http.MethodPost, "/predict", map[string]interface{}{
		"kind": "simple", "home_team": "Arsenal", "away_team": "Chelsea",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var errResp map[string]string
	helpers.DecodeJSON(t, rec, &errResp)
	assert.Contains(t, errResp["error"], "no trained model")

	rec = helpers.MakeJSONRequest(t, router, http.MethodGet, "/teams", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "team listing does not need a model")
}

// TestModelSwapDuringServing swaps the agent the way the retrain job does and
// checks the served model changes without a restart.
func TestModelSwapDuringServing(t *testing.T) {
	first := helpers.NewAgent(t, models.ModelTypeRF)
	srv := server.New(apiConfig(), first, helpers.QuietLogger())
	router := srv.Router()

	var before models.ModelInfo
	rec := helpers.MakeJSONRequest(t, router, http.MethodGet, "/model/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	helpers.DecodeJSON(t, rec, &before)
	assert.Equal(t, models.ModelTypeRF, before.ModelType)

	second := helpers.NewAgent(t, models.ModelTypeGBT)
	srv.Handler().SetAgent(second)

	var after models.ModelInfo
	rec = helpers.MakeJSONRequest(t, router, http.MethodGet, "/model/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	helpers.DecodeJSON(t, rec, &after)

	assert.Equal(t, models.ModelTypeGBT, after.ModelType)
	assert.NotEqual(t, before.ID, after.ID)

	rec = helpers.MakeJSONRequest(t, router, http.MethodPost, "/predict", map[string]interface{}{
		"kind": "simple", "home_team": "Arsenal", "away_team": "Chelsea",
	})
	assert.Equal(t, http.StatusOK, rec.Code, "predictions keep flowing after the swap")
}

// TestCacheInvalidatedByModelSwap: cached responses are keyed by artifact ID,
// so a new model must never serve a stale scoreline.
func TestCacheInvalidatedByModelSwap(t *testing.T) {
	srv := server.New(apiConfig(), helpers.NewAgent(t, models.ModelTypeRF), helpers.QuietLogger())
	router := srv.Router()
	body := map[string]interface{}{"kind": "simple", "home_team": "Brentford", "away_team": "Fulham"}

	var first models.MatchPrediction
	rec := helpers.MakeJSONRequest(t, router, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, rec.Code)
	helpers.DecodeJSON(t, rec, &first)

	srv.Handler().SetAgent(helpers.NewAgent(t, models.ModelTypeRF))

	var second models.MatchPrediction
	rec = helpers.MakeJSONRequest(t, router, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, rec.Code)
	helpers.DecodeJSON(t, rec, &second)

	assert.NotEqual(t, first.PredictedAt, second.PredictedAt,
		"new artifact ID must bypass the old cache entry")
}

// TestFairOddsMatchProbabilities verifies the served odds are exactly the
// no-margin inverse of the served probabilities.
func TestFairOddsMatchProbabilities(t *testing.T) {
	srv := server.New(apiConfig(), helpers.NewAgent(t, models.ModelTypeEnsemble), helpers.QuietLogger())

	var prediction models.MatchPrediction
	rec := helpers.MakeJSONRequest(t, srv.Router(), http.MethodPost, "/predict", map[string]interface{}{
		"kind": "simple", "home_team": "Liverpool", "away_team": "Southampton",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	helpers.DecodeJSON(t, rec, &prediction)

	require.NotNil(t, prediction.Probabilities)
	require.NotNil(t, prediction.FairOdds)

	p := prediction.Probabilities
	odds := prediction.FairOdds
	assert.True(t, odds.HomeWin.Equal(decimal.NewFromFloat(1/p.HomeWin).Round(2)),
		"home odds %s vs probability %f", odds.HomeWin, p.HomeWin)
	assert.True(t, odds.Draw.Equal(decimal.NewFromFloat(1/p.Draw).Round(2)),
		"draw odds %s vs probability %f", odds.Draw, p.Draw)
	assert.True(t, odds.AwayWin.Equal(decimal.NewFromFloat(1/p.AwayWin).Round(2)),
		"away odds %s vs probability %f", odds.AwayWin, p.AwayWin)
}
