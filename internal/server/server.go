// Package server exposes the prediction agent over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/teams"
)

// Server wires the HTTP router, handlers and lifecycle around the agent.
type Server struct {
	cfg     *config.Config
	logger  *logrus.Logger
	handler *Handler
	httpSrv *http.Server
}

// New creates an API server. The agent may be swapped later via the handler,
// so a nil agent is allowed: the server reports not ready until one is set.
func New(cfg *config.Config, ag *agent.Agent, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	var responseCache *cache.Cache
	if cfg.Cache.TTLSeconds > 0 {
		responseCache = cache.New(cfg.CacheTTL(), cfg.CacheCleanupInterval())
	}

	handler := NewHandler(HandlerConfig{
		Agent:    ag,
		Registry: teams.NewRegistry(),
		Cache:    responseCache,
		Logger:   logger,
		Service:  cfg.App.Name,
	})

	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// Handler returns the request handler, mainly so callers can swap the model.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handler.Health)
	r.Get("/ready", s.handler.Ready)
	r.Get("/teams", s.handler.Teams)
	r.Get("/model/info", s.handler.ModelInfo)
	r.Post("/predict", s.handler.Predict)
	r.Post("/batch-predict", s.handler.BatchPredict)

	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, metrics.Handler())
	}

	return r
}

// Start runs the HTTP server until Shutdown is called or it fails.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         s.cfg.ServerAddress(),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"addr":    s.cfg.ServerAddress(),
		"service": s.cfg.App.Name,
	}).Info("API server starting")

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting new requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	s.logger.Info("API server shutting down")
	return s.httpSrv.Shutdown(ctx)
}
