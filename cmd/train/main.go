// Package main provides the model training CLI.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/footy-forecast/internal/config"
	applogger "github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile  string
	samples     int
	seed        int64
	modelType   string
	datasetPath string
	outputPath  string
	cfg         *config.Config
	appLog      *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVarP(&samples, "samples", "n", 0, "Number of synthetic training samples (overrides config)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for the synthetic dataset (overrides config)")
	rootCmd.Flags().StringVarP(&modelType, "model-type", "m", "", "Model family: rf, gbt or ensemble (overrides config)")
	rootCmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Train from this CSV dataset instead of synthetic data")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Artifact output path (overrides config)")
}

var rootCmd = &cobra.Command{
	Use:   "footy-train",
	Short: "Train a match forecast model",
	Long:  `Train the score regression ensemble on synthetic or CSV match data and save the artifact.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyFlagOverrides(cmd)
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTraining()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func applyFlagOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("samples") {
		cfg.Training.Samples = samples
	}
	if cmd.Flags().Changed("seed") {
		cfg.Training.Seed = seed
	}
	if modelType != "" {
		cfg.Model.Type = modelType
	}
	if datasetPath != "" {
		cfg.Training.DatasetPath = datasetPath
	}
	if outputPath != "" {
		cfg.Model.ArtifactPath = outputPath
	}
}

func runTraining() error {
	appLog.WithFields(logrus.Fields{
		"model_type": cfg.Model.Type,
		"samples":    cfg.Training.Samples,
		"seed":       cfg.Training.Seed,
		"version":    Version,
		"commit":     GitCommit,
	}).Info("Training started")

	trainLog := applogger.NewTrainingLogger(appLog)

	t, err := trainer.NewTrainer(trainer.TrainConfig{
		ModelType: cfg.Model.Type,
		Samples:   cfg.Training.Samples,
		Seed:      cfg.Training.Seed,
	}, appLog)
	if err != nil {
		return err
	}

	start := time.Now()

	records, err := loadDataset()
	if err != nil {
		return err
	}

	var model *trainer.TrainedModel
	if records != nil {
		fmt.Printf("Training %s model on %d records from %s...\n", cfg.Model.Type, len(records), cfg.Training.DatasetPath)
		split, err := t.SplitRecords(records)
		if err != nil {
			return err
		}
		model, err = t.Train(split)
		if err != nil {
			trainLog.LogTrainingError("fit", err.Error())
			return err
		}
	} else {
		fmt.Printf("Training %s model on %d synthetic matches...\n", cfg.Model.Type, cfg.Training.Samples)
		model, err = t.Run()
		if err != nil {
			trainLog.LogTrainingError("fit", err.Error())
			return err
		}
	}

	if err := trainer.SaveModel(model, cfg.Model.ArtifactPath); err != nil {
		return fmt.Errorf("failed to save model artifact: %w", err)
	}
	trainLog.LogArtifactSaved(model.Info.ID.String(), cfg.Model.ArtifactPath)

	fmt.Println()
	fmt.Println(trainer.FormatEvaluation(model.Info))
	fmt.Printf("✓ Model trained in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("✓ Artifact saved to %s\n", cfg.Model.ArtifactPath)
	return nil
}

// loadDataset reads the configured CSV dataset. A missing file is fatal when
// the dataset was requested via --dataset, otherwise training falls back to
// synthetic data.
func loadDataset() ([]models.MatchRecord, error) {
	if cfg.Training.DatasetPath == "" {
		return nil, nil
	}
	records, err := trainer.ReadDatasetCSV(cfg.Training.DatasetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && datasetPath == "" {
			appLog.WithField("path", cfg.Training.DatasetPath).Warn("Dataset CSV not found, falling back to synthetic data")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return records, nil
}
