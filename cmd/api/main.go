// Package main provides the entry point for the forecast API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/datasource"
	applogger "github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/scheduler"
	"github.com/yourusername/footy-forecast/internal/server"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "footy-api",
	Short: "Serve the match forecast HTTP API",
	Long:  `Serve football match score predictions over HTTP, backed by a trained regression ensemble artifact.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func runServer() error {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
		"build_date":  BuildDate,
	}).Info("Footy Forecast API starting")

	metrics.InitRegistry()

	model, err := loadOrTrainModel()
	if err != nil {
		return err
	}

	ag, err := agent.New(model, appLog)
	if err != nil {
		return err
	}

	srv := server.New(cfg, ag, appLog)

	sched, err := scheduleJobs(srv)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if sched != nil {
			_ = sched.Stop()
		}
		return err
	case sig := <-sigChan:
		appLog.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error stopping scheduler")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Error during server shutdown")
		return err
	}

	appLog.Info("Footy Forecast API shut down successfully")
	return nil
}

// loadOrTrainModel loads the configured artifact, training a fresh model
// when none exists yet.
func loadOrTrainModel() (*trainer.TrainedModel, error) {
	model, err := trainer.LoadModel(cfg.Model.ArtifactPath)
	if err == nil {
		appLog.WithFields(logrus.Fields{
			"path":       cfg.Model.ArtifactPath,
			"model_type": model.Info.ModelType,
			"trained_at": model.Info.TrainedAt.Format(time.RFC3339),
		}).Info("Loaded model artifact")
		metrics.UpdateLastTrainingTimestamp(float64(model.Info.TrainedAt.Unix()))
		recordEvaluationMetrics(model.Info)
		return model, nil
	}
	if !errors.Is(err, models.ErrModelNotFound) {
		return nil, err
	}

	appLog.WithField("path", cfg.Model.ArtifactPath).Warn("No model artifact found, training a new one")
	return trainModel()
}

// trainModel trains from the configured dataset CSV when present, otherwise
// from synthetic data, then saves the artifact.
func trainModel() (*trainer.TrainedModel, error) {
	start := time.Now()

	t, err := trainer.NewTrainer(trainer.TrainConfig{
		ModelType: cfg.Model.Type,
		Samples:   cfg.Training.Samples,
		Seed:      cfg.Training.Seed,
	}, appLog)
	if err != nil {
		return nil, err
	}

	var model *trainer.TrainedModel
	records, readErr := readDataset()
	switch {
	case readErr != nil:
		metrics.RecordTrainingRun(cfg.Model.Type, "failure")
		return nil, readErr
	case records != nil:
		split, err := t.SplitRecords(records)
		if err == nil {
			model, err = t.Train(split)
		}
		if err != nil {
			metrics.RecordTrainingRun(cfg.Model.Type, "failure")
			return nil, err
		}
	default:
		model, err = t.Run()
		if err != nil {
			metrics.RecordTrainingRun(cfg.Model.Type, "failure")
			return nil, err
		}
	}

	metrics.RecordTrainingRun(model.Info.ModelType, "success")
	metrics.RecordTrainingDuration(time.Since(start).Seconds())
	metrics.UpdateLastTrainingTimestamp(float64(model.Info.TrainedAt.Unix()))
	recordEvaluationMetrics(model.Info)

	if err := trainer.SaveModel(model, cfg.Model.ArtifactPath); err != nil {
		return nil, fmt.Errorf("failed to save model artifact: %w", err)
	}
	appLog.WithFields(logrus.Fields{
		"path":     cfg.Model.ArtifactPath,
		"duration": time.Since(start).String(),
	}).Info("Saved model artifact")

	return model, nil
}

// readDataset returns the configured CSV records, nil when no dataset is
// configured or the file does not exist yet.
func readDataset() ([]models.MatchRecord, error) {
	if cfg.Training.DatasetPath == "" {
		return nil, nil
	}
	records, err := trainer.ReadDatasetCSV(cfg.Training.DatasetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			appLog.WithField("path", cfg.Training.DatasetPath).Warn("Dataset CSV not found, falling back to synthetic data")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	appLog.WithFields(logrus.Fields{
		"path":    cfg.Training.DatasetPath,
		"records": len(records),
	}).Info("Loaded training dataset")
	return records, nil
}

func recordEvaluationMetrics(info models.ModelInfo) {
	metrics.UpdateEvaluationScores("overall", info.Metrics.MAE, info.Metrics.RMSE, info.Metrics.R2)
	metrics.EvaluationMAE.WithLabelValues("home_goals").Set(info.Metrics.HomeGoalsMAE)
	metrics.EvaluationMAE.WithLabelValues("away_goals").Set(info.Metrics.AwayGoalsMAE)
	metrics.UpdateModelTrainingSamples(float64(info.TrainingSamples))
}

// scheduleJobs wires the optional retrain and dataset refresh cron jobs.
func scheduleJobs(srv *server.Server) (*scheduler.Scheduler, error) {
	retrainCron := cfg.DataIngestion.Schedule.RetrainCron
	refreshCron := cfg.DataIngestion.Schedule.DatasetRefreshCron
	if retrainCron == "" && refreshCron == "" {
		return nil, nil
	}

	sched := scheduler.New(appLog)

	if retrainCron != "" {
		err := sched.Schedule("model_retrain", retrainCron, func(ctx context.Context) error {
			model, err := trainModel()
			if err != nil {
				return err
			}
			ag, err := agent.New(model, appLog)
			if err != nil {
				return err
			}
			srv.Handler().SetAgent(ag)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if refreshCron != "" {
		err := sched.Schedule("dataset_refresh", refreshCron, func(ctx context.Context) error {
			return refreshDataset(ctx)
		})
		if err != nil {
			return nil, err
		}
	}

	if err := sched.Start(); err != nil {
		return nil, err
	}
	return sched, nil
}

// refreshDataset pulls fresh match records from the first enabled data
// source and rewrites the training CSV.
func refreshDataset(ctx context.Context) error {
	if cfg.Training.DatasetPath == "" {
		return fmt.Errorf("training.dataset_path must be set for dataset refreshes")
	}

	source, err := buildSource()
	if err != nil {
		return err
	}

	fetcher, err := datasource.NewHistoricalFetcher(source, appLog)
	if err != nil {
		return err
	}

	records, err := fetcher.FetchTrainingData(ctx, cfg.DataIngestion.LeagueIDs, cfg.DataIngestion.Season, cfg.DataIngestion.MaxMatches)
	if err != nil {
		metrics.RecordDatasetFetch(source.Name(), "failure")
		return err
	}
	metrics.RecordDatasetFetch(source.Name(), "success")
	metrics.RecordDatasetRows(len(records))

	if err := trainer.WriteDatasetCSV(records, cfg.Training.DatasetPath); err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"source":  source.Name(),
		"records": len(records),
		"path":    cfg.Training.DatasetPath,
	}).Info("Training dataset refreshed")
	return nil
}

// buildSource creates the first enabled data source from configuration.
func buildSource() (datasource.Source, error) {
	httpCfg := datasource.DefaultHTTPClientConfig()
	for _, sc := range cfg.EnabledSources() {
		if sc.Name == string(datasource.APIFootballSourceType) && sc.RateLimitPerSecond > 0 {
			httpCfg.RateLimit = sc.RateLimitPerSecond
		}
	}
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, appLog)

	sources, err := datasource.NewFactory(appLog).NewSources(cfg.DataIngestion, httpClient)
	if err != nil {
		return nil, err
	}
	return sources[0], nil
}
