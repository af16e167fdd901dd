package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/metrics"
)

// TestObservabilityIntegration wires the specialized loggers and the metrics
// registry together the way the binaries do.
func TestObservabilityIntegration(t *testing.T) {
	metrics.InitRegistry()

	appLog := logrus.New()
	logBuf := &bytes.Buffer{}
	appLog.SetOutput(logBuf)
	appLog.SetFormatter(&logrus.JSONFormatter{})
	appLog.SetLevel(logrus.DebugLevel)

	predictionLogger := logger.NewPredictionLogger(appLog)
	trainingLogger := logger.NewTrainingLogger(appLog)

	t.Run("metrics collection", func(t *testing.T) {
		metrics.RecordPrediction(0.012)
		metrics.RecordPredictionOutcome("home_win")
		metrics.RecordPredictedGoals(3)
		metrics.RecordCacheHit()
		metrics.RecordCacheMiss()
		metrics.UpdateModelLoaded(true)
		metrics.UpdateModelTrainingSamples(4000)
		metrics.RecordTrainingRun("ensemble", "success")
		metrics.RecordDatasetRows(5000)
		metrics.UpdateEvaluationScores("home_goals", 0.9, 1.2, 0.4)
	})

	t.Run("prediction logging", func(t *testing.T) {
		logBuf.Reset()

		predictionLogger.LogPrediction("Arsenal", "Chelsea", 2, 1, "Home Win", 14.2)

		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuf.Bytes(), &logEntry))
		assert.Equal(t, "prediction", logEntry["component"])
		assert.Equal(t, "Home Win", logEntry["result"])
	})

	t.Run("training logging", func(t *testing.T) {
		logBuf.Reset()

		trainingLogger.LogEvaluationCompleted("ensemble", map[string]float64{"mae": 0.91})

		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuf.Bytes(), &logEntry))
		assert.Equal(t, "training", logEntry["component"])
		assert.Equal(t, "ensemble", logEntry["model_type"])
	})

	t.Run("prometheus metrics endpoint", func(t *testing.T) {
		registry := metrics.GetRegistry()
		require.NotNil(t, registry)

		server := httptest.NewServer(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		defer server.Close()

		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := &bytes.Buffer{}
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, body.String(), "footy_forecast_")
	})

	t.Run("end-to-end workflow logging", func(t *testing.T) {
		logBuf.Reset()

		trainingLogger.LogDatasetGenerated(5000, 42)
		metrics.RecordDatasetRows(5000)

		trainingLogger.LogTrainingCompleted("model-1", "ensemble", 4000, 31250)
		metrics.RecordTrainingRun("ensemble", "success")

		predictionLogger.LogPrediction("Liverpool", "Everton", 3, 1, "Home Win", 9.1)
		metrics.RecordPrediction(0.0091)
		metrics.RecordPredictionOutcome("home_win")

		assert.Positive(t, logBuf.Len())
	})

	t.Run("concurrent metrics recording", func(t *testing.T) {
		done := make(chan bool)

		for i := 0; i < 10; i++ {
			go func(idx int) {
				metrics.RecordPrediction(0.01)
				metrics.RecordCacheHit()
				metrics.UpdateModelTrainingSamples(float64(1000 + idx))
				done <- true
			}(i)
		}

		for i := 0; i < 10; i++ {
			<-done
		}
	})
}

func BenchmarkObservability(b *testing.B) {
	metrics.InitRegistry()

	appLog := logrus.New()
	appLog.SetOutput(&bytes.Buffer{})
	predictionLogger := logger.NewPredictionLogger(appLog)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		metrics.RecordPrediction(0.01)
		predictionLogger.LogPrediction("Arsenal", "Chelsea", 2, 1, "Home Win", 12.5)
	}
}
