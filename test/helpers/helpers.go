// Package helpers provides shared fixtures for the integration and e2e suites.
package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

// QuietLogger returns a logger that discards all output.
func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// TrainSmallModel fits a compact model, enough for behavioural assertions
// without the full training budget.
func TrainSmallModel(t *testing.T, modelType string) *trainer.TrainedModel {
	t.Helper()

	tr, err := trainer.NewTrainer(trainer.TrainConfig{
		ModelType: modelType,
		Samples:   300,
		Seed:      7,
	}, QuietLogger())
	require.NoError(t, err)

	model, err := tr.Run()
	require.NoError(t, err)
	return model
}

// NewAgent wraps TrainSmallModel in a ready prediction agent.
func NewAgent(t *testing.T, modelType string) *agent.Agent {
	t.Helper()

	ag, err := agent.New(TrainSmallModel(t, modelType), QuietLogger())
	require.NoError(t, err)
	return ag
}

// UniformRatings returns a full starting eleven at a single rating.
func UniformRatings(rating float64) models.PlayerRatingVector {
	ratings := make(models.PlayerRatingVector, models.TeamSize)
	for i := range ratings {
		ratings[i] = rating
	}
	return ratings
}

// SampleInput builds a valid match input between two named sides, with the
// home side slightly stronger and in better form.
func SampleInput(homeTeam, awayTeam string) models.MatchInput {
	return models.MatchInput{
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		HomeRatings: UniformRatings(82),
		AwayRatings: UniformRatings(77),
		HomeForm:    models.FormSequence{3, 1, 3, 0, 3},
		AwayForm:    models.FormSequence{0, 1, 1, 3, 0},
	}
}

// WriteArtifact saves the model under dir and returns the artifact path.
func WriteArtifact(t *testing.T, model *trainer.TrainedModel, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "model.json")
	require.NoError(t, trainer.SaveModel(model, path))
	return path
}

// MakeJSONRequest performs an in-process JSON request against the handler.
func MakeJSONRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON unmarshals a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}
