package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/teams"
)

// maxBodySize limits the size of request bodies to 1MB.
const maxBodySize = 1 << 20

// Request kinds accepted by the predict endpoints.
const (
	kindSimple   = "simple"
	kindDetailed = "detailed"
)

// requestError is a client error that maps to a 400 response.
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

// simplePredictRequest resolves both sides from the built-in team profiles.
type simplePredictRequest struct {
	MatchID  string `json:"match_id"`
	HomeTeam string `json:"home_team" validate:"required"`
	AwayTeam string `json:"away_team" validate:"required"`
}

// detailedPredictRequest carries full rating and form vectors. Team names are
// validated by the agent where the endpoint requires them.
type detailedPredictRequest struct {
	MatchID     string                    `json:"match_id"`
	HomeTeam    string                    `json:"home_team"`
	AwayTeam    string                    `json:"away_team"`
	HomeRatings models.PlayerRatingVector `json:"home_ratings" validate:"required,len=11,dive,min=50,max=99"`
	AwayRatings models.PlayerRatingVector `json:"away_ratings" validate:"required,len=11,dive,min=50,max=99"`
	HomeForm    models.FormSequence       `json:"home_form" validate:"required,len=5,dive,oneof=0 1 3"`
	AwayForm    models.FormSequence       `json:"away_form" validate:"required,len=5,dive,oneof=0 1 3"`
}

type batchPredictRequest struct {
	Matches []json.RawMessage `json:"matches" validate:"required,min=1,max=100"`
}

type batchPredictResponse struct {
	Predictions []*models.MatchPrediction `json:"predictions"`
	Count       int                       `json:"count"`
	DurationMs  float64                   `json:"duration_ms"`
}

type teamsResponse struct {
	Teams []string `json:"teams"`
	Count int      `json:"count"`
}

// HandlerConfig holds the dependencies for the request handlers.
type HandlerConfig struct {
	Agent    *agent.Agent
	Registry *teams.Registry
	Cache    *cache.Cache
	Logger   *logrus.Logger
	Service  string
}

// Handler serves the prediction API. The agent is guarded by a mutex so a
// scheduled retrain can swap it while requests are in flight.
type Handler struct {
	mu        sync.RWMutex
	agent     *agent.Agent
	registry  *teams.Registry
	cache     *cache.Cache
	logger    *logrus.Logger
	validator *validator.Validate
	service   string
	startedAt time.Time
}

// NewHandler creates the API request handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = teams.NewRegistry()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	h := &Handler{
		agent:     cfg.Agent,
		registry:  registry,
		cache:     cfg.Cache,
		logger:    logger,
		validator: v,
		service:   cfg.Service,
		startedAt: time.Now().UTC(),
	}

	metrics.UpdateModelLoaded(cfg.Agent != nil)
	if cfg.Agent != nil {
		metrics.UpdateModelTrainingSamples(float64(cfg.Agent.Model().Info.TrainingSamples))
	}
	return h
}

// SetAgent swaps the serving agent, typically after a scheduled retrain.
// Cache entries are keyed by artifact ID so stale responses never match.
func (h *Handler) SetAgent(ag *agent.Agent) {
	h.mu.Lock()
	h.agent = ag
	h.mu.Unlock()

	metrics.UpdateModelLoaded(ag != nil)
	if ag != nil {
		metrics.UpdateModelTrainingSamples(float64(ag.Model().Info.TrainingSamples))
	}
}

func (h *Handler) currentAgent() *agent.Agent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.agent
}

// Predict handles POST /predict. The body is a tagged union dispatched on
// "kind": simple requests name two built-in teams, detailed requests carry
// full vectors. Both return the refined scoreline with probabilities.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ag := h.currentAgent()
	if ag == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "no trained model is loaded")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	input, kind, err := h.decodeVariant(body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cacheKey := ""
	if kind == kindSimple && h.cache != nil {
		cacheKey = fmt.Sprintf("%s|%s|%s", input.HomeTeam, input.AwayTeam, ag.Model().Info.ID)
		if cached, found := h.cache.Get(cacheKey); found {
			metrics.RecordCacheHit()
			h.jsonResponse(w, http.StatusOK, cached)
			return
		}
		metrics.RecordCacheMiss()
	}

	prediction, err := ag.PredictMatchDetailed(input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if cacheKey != "" {
		h.cache.Set(cacheKey, prediction, cache.DefaultExpiration)
	}

	recordPredictionMetrics(prediction, time.Since(start).Seconds())
	h.jsonResponse(w, http.StatusOK, prediction)
}

// BatchPredict handles POST /batch-predict. Each entry is the same tagged
// union as POST /predict. Responses preserve input order and carry the raw
// model scorelines without refinement.
func (h *Handler) BatchPredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ag := h.currentAgent()
	if ag == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "no trained model is loaded")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req batchPredictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, &requestError{"request body is not valid JSON"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.writeError(w, &requestError{validationMessage(err)})
		return
	}

	inputs := make([]models.MatchInput, 0, len(req.Matches))
	for i, raw := range req.Matches {
		input, _, err := h.decodeVariant(raw)
		if err != nil {
			h.writeError(w, fmt.Errorf("match %d: %w", i, err))
			return
		}
		inputs = append(inputs, input)
	}

	predictions, err := ag.BatchPredict(inputs)
	if err != nil {
		h.writeError(w, err)
		return
	}

	metrics.RecordBatchPrediction(len(predictions))
	h.jsonResponse(w, http.StatusOK, batchPredictResponse{
		Predictions: predictions,
		Count:       len(predictions),
		DurationMs:  float64(time.Since(start).Microseconds()) / 1000,
	})
}

// Teams handles GET /teams.
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	h.jsonResponse(w, http.StatusOK, teamsResponse{Teams: names, Count: len(names)})
}

// ModelInfo handles GET /model/info.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	ag := h.currentAgent()
	if ag == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "no trained model is loaded")
		return
	}
	h.jsonResponse(w, http.StatusOK, ag.Model().Info)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   h.service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. Ready requires a loaded model artifact.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true

	if h.currentAgent() == nil {
		checks["model"] = "not_loaded"
		ready = false
	} else {
		checks["model"] = "ok"
	}

	status := "ok"
	code := http.StatusOK
	if !ready {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	h.jsonResponse(w, code, map[string]interface{}{
		"status":  status,
		"service": h.service,
		"checks":  checks,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// decodeVariant dispatches the tagged-union request body on its kind field.
func (h *Handler) decodeVariant(body []byte) (models.MatchInput, string, error) {
	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.MatchInput{}, "", &requestError{"request body is not valid JSON"}
	}

	switch envelope.Kind {
	case kindSimple:
		var req simplePredictRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return models.MatchInput{}, "", &requestError{"request body is not valid JSON"}
		}
		if err := h.validator.Struct(req); err != nil {
			return models.MatchInput{}, "", &requestError{validationMessage(err)}
		}
		input, err := h.resolveProfiles(req)
		if err != nil {
			return models.MatchInput{}, "", err
		}
		return input, kindSimple, nil

	case kindDetailed:
		var req detailedPredictRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return models.MatchInput{}, "", &requestError{"request body is not valid JSON"}
		}
		if err := h.validator.Struct(req); err != nil {
			return models.MatchInput{}, "", &requestError{validationMessage(err)}
		}
		return models.MatchInput{
			MatchID:     req.MatchID,
			HomeTeam:    req.HomeTeam,
			AwayTeam:    req.AwayTeam,
			HomeRatings: req.HomeRatings,
			AwayRatings: req.AwayRatings,
			HomeForm:    req.HomeForm,
			AwayForm:    req.AwayForm,
		}, kindDetailed, nil

	default:
		return models.MatchInput{}, "", &requestError{
			fmt.Sprintf("unknown kind %q: must be %q or %q", envelope.Kind, kindSimple, kindDetailed),
		}
	}
}

// resolveProfiles builds a MatchInput from two built-in team profiles.
func (h *Handler) resolveProfiles(req simplePredictRequest) (models.MatchInput, error) {
	home, err := h.registry.Lookup(req.HomeTeam)
	if err != nil {
		return models.MatchInput{}, err
	}
	away, err := h.registry.Lookup(req.AwayTeam)
	if err != nil {
		return models.MatchInput{}, err
	}
	if home.Name == away.Name {
		return models.MatchInput{}, &requestError{"home_team and away_team must differ"}
	}

	return models.MatchInput{
		MatchID:     req.MatchID,
		HomeTeam:    home.Name,
		AwayTeam:    away.Name,
		HomeRatings: home.Ratings,
		AwayRatings: away.Ratings,
		HomeForm:    home.Form,
		AwayForm:    away.Form,
	}, nil
}

// writeError maps pipeline errors onto HTTP statuses: client mistakes to 400,
// a missing or untrained model to 503, everything else to 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	var valErr *models.ValidationError

	switch {
	case errors.As(err, &reqErr):
		metrics.RecordValidationFailure()
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &valErr):
		metrics.RecordValidationFailure()
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnknownTeam):
		metrics.RecordValidationFailure()
		h.errorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("%v (known teams: %s)", err, strings.Join(h.registry.Names(), ", ")))
	case errors.Is(err, models.ErrUntrainedModel):
		h.errorResponse(w, http.StatusServiceUnavailable, "model is not trained")
	default:
		metrics.RecordPredictionError()
		h.logger.WithError(err).Error("Prediction failed")
		h.errorResponse(w, http.StatusInternalServerError, "prediction failed")
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, &requestError{"request body too large or unreadable"}
	}
	if len(body) == 0 {
		return nil, &requestError{"request body is required"}
	}
	return body, nil
}

// validationMessage flattens validator errors into one readable line using
// the json field names.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "len":
			parts = append(parts, fmt.Sprintf("%s must contain exactly %s entries", fe.Field(), fe.Param()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must have at least %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must have at most %s", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func recordPredictionMetrics(p *models.MatchPrediction, durationSeconds float64) {
	metrics.RecordPrediction(durationSeconds)

	outcome := outcomeKey(p.Result)
	metrics.RecordPredictionOutcome(outcome)
	metrics.RecordPredictedGoals(float64(p.HomeScore + p.AwayScore))
	if p.Probabilities != nil {
		metrics.RecordPredictionProbability(outcome, probabilityFor(outcome, *p.Probabilities))
	}
}

func outcomeKey(result string) string {
	switch result {
	case models.ResultHomeWin:
		return "home_win"
	case models.ResultAwayWin:
		return "away_win"
	default:
		return "draw"
	}
}

func probabilityFor(outcome string, p models.OutcomeProbabilities) float64 {
	switch outcome {
	case "home_win":
		return p.HomeWin
	case "away_win":
		return p.AwayWin
	default:
		return p.Draw
	}
}
