// Package main provides the one-shot match prediction CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/footy-forecast/internal/agent"
	"github.com/yourusername/footy-forecast/internal/config"
	applogger "github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/teams"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	homeTeam   string
	awayTeam   string
	inputFile  string
	modelPath  string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", Version, GitCommit)
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&homeTeam, "home", "", "Home team name")
	rootCmd.Flags().StringVar(&awayTeam, "away", "", "Away team name")
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "JSON file with full match input (ratings and form)")
	rootCmd.Flags().StringVar(&modelPath, "model", "", "Model artifact path (overrides config)")

	rootCmd.AddCommand(teamsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "footy-predict",
	Short: "Predict a match scoreline",
	Long: `Predict the scoreline, result and outcome probabilities for a fixture.

Name a fixture with --home and --away to use the built-in squad profiles,
or pass --input with a JSON file carrying explicit ratings and form.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if modelPath != "" {
			cfg.Model.ArtifactPath = modelPath
		}
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict()
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the built-in team profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := teams.NewRegistry()
		fmt.Println("Known Teams")
		fmt.Println("===========")
		for _, name := range registry.Names() {
			profile := registry.Profile(name)
			fmt.Printf("%-26s strength %.0f, form %s\n",
				name, profile.BaseRating, agent.FormatFormResults(profile.Form))
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runPredict() error {
	input, err := buildInput()
	if err != nil {
		return err
	}

	model, err := loadOrTrainModel()
	if err != nil {
		return err
	}

	ag, err := agent.New(model, appLog)
	if err != nil {
		return err
	}

	prediction, err := ag.PredictMatchDetailed(input)
	if err != nil {
		return err
	}

	printPrediction(prediction)
	return nil
}

// buildInput assembles the match input from either the squad registry or an
// explicit JSON file. Unknown team names fall back to an average-strength
// profile with a warning.
func buildInput() (models.MatchInput, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return models.MatchInput{}, fmt.Errorf("failed to read input file: %w", err)
		}
		var input models.MatchInput
		if err := json.Unmarshal(data, &input); err != nil {
			return models.MatchInput{}, fmt.Errorf("failed to parse input file: %w", err)
		}
		return input, nil
	}

	if homeTeam == "" || awayTeam == "" {
		return models.MatchInput{}, fmt.Errorf("either --input or both --home and --away are required")
	}

	registry := teams.NewRegistry()
	home := registry.Profile(homeTeam)
	away := registry.Profile(awayTeam)
	if home.Name == away.Name {
		return models.MatchInput{}, fmt.Errorf("home and away teams must differ")
	}
	for _, profile := range []teams.Profile{home, away} {
		if !profile.Known {
			appLog.WithField("team", profile.Name).Warn("Unknown team, using an average-strength profile")
		}
	}

	return models.MatchInput{
		HomeTeam:    home.Name,
		AwayTeam:    away.Name,
		HomeRatings: home.Ratings,
		AwayRatings: away.Ratings,
		HomeForm:    home.Form,
		AwayForm:    away.Form,
	}, nil
}

// loadOrTrainModel loads the configured artifact, training a fresh model in
// its place when none exists yet.
func loadOrTrainModel() (*trainer.TrainedModel, error) {
	model, err := trainer.LoadModel(cfg.Model.ArtifactPath)
	if err == nil {
		return model, nil
	}
	if !errors.Is(err, models.ErrModelNotFound) {
		return nil, fmt.Errorf("failed to load model artifact: %w", err)
	}

	appLog.WithField("path", cfg.Model.ArtifactPath).Warn("No model artifact found, training a new model")
	fmt.Printf("Training %s model on %d synthetic matches (first run)...\n", cfg.Model.Type, cfg.Training.Samples)

	t, err := trainer.NewTrainer(trainer.TrainConfig{
		ModelType: cfg.Model.Type,
		Samples:   cfg.Training.Samples,
		Seed:      cfg.Training.Seed,
	}, appLog)
	if err != nil {
		return nil, err
	}
	model, err = t.Run()
	if err != nil {
		return nil, err
	}
	if err := trainer.SaveModel(model, cfg.Model.ArtifactPath); err != nil {
		appLog.WithError(err).Warn("Failed to save model artifact")
	}
	return model, nil
}

func printPrediction(prediction *models.MatchPrediction) {
	fmt.Println(prediction.Report)
	fmt.Println("Outcome Probabilities")
	fmt.Printf("  Home Win: %5.1f%%  (fair odds %s)\n",
		prediction.Probabilities.HomeWin*100, prediction.FairOdds.HomeWin)
	fmt.Printf("  Draw:     %5.1f%%  (fair odds %s)\n",
		prediction.Probabilities.Draw*100, prediction.FairOdds.Draw)
	fmt.Printf("  Away Win: %5.1f%%  (fair odds %s)\n",
		prediction.Probabilities.AwayWin*100, prediction.FairOdds.AwayWin)
	fmt.Printf("\nSuggested Outcome: %s\n", prediction.SuggestedOutcome)
}
