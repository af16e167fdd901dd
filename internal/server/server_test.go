package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.LoadWithDefaults("")
	require.NoError(t, err)

	srv := New(cfg, testAgent(t), quietLogger())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestRouterServesHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRouterServesMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "footy_forecast_predictions_total")
}

func TestRouterServesPredict(t *testing.T) {
	ts := newTestServer(t)

	body := bytes.NewBufferString(`{"kind":"simple","home_team":"Arsenal","away_team":"Chelsea"}`)
	resp, err := http.Post(ts.URL+"/predict", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prediction models.MatchPrediction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prediction))
	assert.Equal(t, "Arsenal", prediction.HomeTeam)
	require.NotNil(t, prediction.Probabilities)
}

func TestRouterRejectsUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/predict")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
