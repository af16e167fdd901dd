//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/server"
	"github.com/yourusername/footy-forecast/internal/trainer"
	"github.com/yourusername/footy-forecast/test/helpers"
)

// TestForecastServiceE2E drives the complete workflow: configuration load,
// model training, artifact persistence, artifact reload and the public API.
func TestForecastServiceE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	dir := t.TempDir()
	cfg := loadTestConfig(t, dir)
	appLog := helpers.QuietLogger()

	// Train and persist a model the way cmd/train does.
	tr, err := trainer.NewTrainer(trainer.TrainConfig{
		ModelType: cfg.Model.Type,
		Samples:   cfg.Training.Samples,
		Seed:      cfg.Training.Seed,
	}, appLog)
	require.NoError(t, err)

	model, err := tr.Run()
	require.NoError(t, err)
	require.NoError(t, trainer.SaveModel(model, cfg.Model.ArtifactPath))

	// Reload the artifact the way cmd/api does at startup.
	loaded, err := trainer.LoadModel(cfg.Model.ArtifactPath)
	require.NoError(t, err)
	ag, err := agent.New(loaded, appLog)
	require.NoError(t, err)

	ts := httptest.NewServer(server.New(cfg, ag, appLog).Router())
	defer ts.Close()

	t.Run("health and readiness", func(t *testing.T) {
		health := getJSON(t, ts.URL+"/health")
		assert.Equal(t, "ok", health["status"])
		assert.Equal(t, "footy-forecast", health["service"])

		ready := getJSON(t, ts.URL+"/ready")
		assert.Equal(t, "ok", ready["status"])
	})

	t.Run("teams listing", func(t *testing.T) {
		var listing struct {
			Teams []string `json:"teams"`
			Count int      `json:"count"`
		}
		resp, err := http.Get(ts.URL + "/teams")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))

		assert.Equal(t, 19, listing.Count)
		assert.Contains(t, listing.Teams, "Arsenal")
		assert.Contains(t, listing.Teams, "Manchester City")
	})

	t.Run("model info", func(t *testing.T) {
		var info models.ModelInfo
		resp, err := http.Get(ts.URL + "/model/info")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))

		assert.Equal(t, model.Info.ID, info.ID)
		assert.Equal(t, models.ModelTypeEnsemble, info.ModelType)
		assert.Equal(t, 240, info.TrainingSamples)
		assert.Len(t, info.FeatureNames, 37)
	})

	t.Run("simple prediction", func(t *testing.T) {
		var prediction models.MatchPrediction
		status := postJSON(t, ts.URL+"/predict", map[string]interface{}{
			"kind":      "simple",
			"home_team": "Arsenal",
			"away_team": "Chelsea",
		}, &prediction)
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, "Arsenal", prediction.HomeTeam)
		assert.Equal(t, "Chelsea", prediction.AwayTeam)
		assert.GreaterOrEqual(t, prediction.HomeScore, 0)
		assert.LessOrEqual(t, prediction.HomeScore, models.MaxRefinedGoals)
		assert.GreaterOrEqual(t, prediction.AwayScore, 0)
		assert.LessOrEqual(t, prediction.AwayScore, models.MaxRefinedGoals)
		assert.NotEqual(t, 0, prediction.HomeScore+prediction.AwayScore,
			"refinement never returns a goalless draw")

		require.NotNil(t, prediction.Probabilities)
		assert.InDelta(t, 1.0, prediction.Probabilities.Sum(), 1e-9)
		assert.Contains(t, []string{models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway},
			prediction.SuggestedOutcome)
		require.NotNil(t, prediction.FairOdds)
		assert.NotEmpty(t, prediction.Report)
	})

	t.Run("repeat simple prediction is served from cache", func(t *testing.T) {
		body := map[string]interface{}{
			"kind":      "simple",
			"home_team": "Liverpool",
			"away_team": "Everton",
		}

		var first, second models.MatchPrediction
		require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/predict", body, &first))
		require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/predict", body, &second))

		assert.Equal(t, first.HomeScore, second.HomeScore)
		assert.Equal(t, first.AwayScore, second.AwayScore)
		assert.Equal(t, first.PredictedAt, second.PredictedAt, "cache hit returns the stored prediction")
	})

	t.Run("detailed prediction", func(t *testing.T) {
		input := helpers.SampleInput("Leeds United", "Everton")
		matchID := uuid.NewString()

		var prediction models.MatchPrediction
		status := postJSON(t, ts.URL+"/predict", map[string]interface{}{
			"kind":         "detailed",
			"match_id":     matchID,
			"home_team":    input.HomeTeam,
			"away_team":    input.AwayTeam,
			"home_ratings": input.HomeRatings,
			"away_ratings": input.AwayRatings,
			"home_form":    input.HomeForm,
			"away_form":    input.AwayForm,
		}, &prediction)
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, matchID, prediction.MatchID)
		assert.Equal(t, 82.0, prediction.HomeTeamStrength)
		assert.Equal(t, 77.0, prediction.AwayTeamStrength)
		assert.Equal(t, 10, prediction.HomeFormPoints)
		assert.Equal(t, 5, prediction.AwayFormPoints)
		require.NotNil(t, prediction.Probabilities)
		assert.InDelta(t, 1.0, prediction.Probabilities.Sum(), 1e-9)
	})

	t.Run("batch prediction returns raw scorelines", func(t *testing.T) {
		input := helpers.SampleInput("", "")

		var batch struct {
			Predictions []*models.MatchPrediction `json:"predictions"`
			Count       int                       `json:"count"`
			DurationMs  float64                   `json:"duration_ms"`
		}
		status := postJSON(t, ts.URL+"/batch-predict", map[string]interface{}{
			"matches": []map[string]interface{}{
				{"kind": "simple", "home_team": "Arsenal", "away_team": "Liverpool"},
				{
					"kind":         "detailed",
					"home_ratings": input.HomeRatings,
					"away_ratings": input.AwayRatings,
					"home_form":    input.HomeForm,
					"away_form":    input.AwayForm,
				},
			},
		}, &batch)
		require.Equal(t, http.StatusOK, status)

		require.Equal(t, 2, batch.Count)
		require.Len(t, batch.Predictions, 2)
		for _, p := range batch.Predictions {
			assert.NotEmpty(t, p.MatchID, "batch entries are assigned match IDs")
			assert.LessOrEqual(t, p.HomeScore, models.MaxRawGoals)
			assert.Nil(t, p.Probabilities, "batch path skips refinement")
		}
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		var errResp map[string]string

		status := postJSON(t, ts.URL+"/predict", map[string]interface{}{
			"kind": "telepathic", "home_team": "Arsenal", "away_team": "Chelsea",
		}, &errResp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errResp["error"], "telepathic")

		status = postJSON(t, ts.URL+"/predict", map[string]interface{}{
			"kind": "simple", "home_team": "Real Madrid", "away_team": "Chelsea",
		}, &errResp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errResp["error"], "known teams")

		input := helpers.SampleInput("", "")
		status = postJSON(t, ts.URL+"/predict", map[string]interface{}{
			"kind":         "detailed",
			"home_ratings": input.HomeRatings[:10],
			"away_ratings": input.AwayRatings,
			"home_form":    input.HomeForm,
			"away_form":    input.AwayForm,
		}, &errResp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errResp["error"], "home_ratings")
	})

	t.Run("prometheus metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), "footy_forecast_"),
			"metrics are exported under the service namespace")
	})
}

// loadTestConfig writes a self-contained configuration and loads it through
// the same path the binaries use.
func loadTestConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`app:
  name: footy-forecast
  environment: development
  log_level: error
  log_format: json

server:
  host: 127.0.0.1
  port: 18080
  read_timeout_seconds: 5
  write_timeout_seconds: 10
  shutdown_timeout_seconds: 5

model:
  type: ensemble
  artifact_path: %s

training:
  samples: 300
  seed: 7

cache:
  ttl_seconds: 60
  cleanup_seconds: 120

metrics:
  enabled: true
  path: /metrics
`, filepath.Join(dir, "model.json"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := config.LoadWithDefaults(configPath)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))
	return cfg
}

func getJSON(t *testing.T, url string) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	resp, err := http.Post(url, "application/json", reader)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", string(raw))
	}
	return resp.StatusCode
}
