// Package main provides the historical dataset fetch CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/datasource"
	applogger "github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/trainer"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	outputPath string
	maxMatches int
	season     int
	leagueIDs  []int
	sourceName string
	timeout    time.Duration
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", Version, GitCommit)
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "CSV output path (overrides config)")
	rootCmd.Flags().IntVar(&maxMatches, "max", 0, "Maximum matches to fetch (overrides config)")
	rootCmd.Flags().IntVar(&season, "season", 0, "Season year, e.g. 2025 (overrides config)")
	rootCmd.Flags().IntSliceVar(&leagueIDs, "league", nil, "League IDs to fetch (overrides config)")
	rootCmd.Flags().StringVar(&sourceName, "source", "", "Data source to use: api_football or simulated")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall fetch timeout")
}

var rootCmd = &cobra.Command{
	Use:   "footy-fetch-data",
	Short: "Fetch historical match data into a training CSV",
	Long:  `Fetch finished fixtures from a configured data source and write them as a training dataset CSV.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyFlagOverrides(cmd)
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func applyFlagOverrides(cmd *cobra.Command) {
	if outputPath != "" {
		cfg.Training.DatasetPath = outputPath
	}
	if cmd.Flags().Changed("max") {
		cfg.DataIngestion.MaxMatches = maxMatches
	}
	if cmd.Flags().Changed("season") {
		cfg.DataIngestion.Season = season
	}
	if len(leagueIDs) > 0 {
		cfg.DataIngestion.LeagueIDs = leagueIDs
	}
}

func runFetch() error {
	if cfg.Training.DatasetPath == "" {
		return fmt.Errorf("an output path is required: set --output or training.dataset_path")
	}

	source, err := buildSource()
	if err != nil {
		return err
	}

	fetcher, err := datasource.NewHistoricalFetcher(source, appLog)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching up to %d matches from %s (season %d, leagues %v)...\n",
		cfg.DataIngestion.MaxMatches, source.Name(), cfg.DataIngestion.Season, cfg.DataIngestion.LeagueIDs)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	records, err := fetcher.FetchTrainingData(ctx,
		cfg.DataIngestion.LeagueIDs, cfg.DataIngestion.Season, cfg.DataIngestion.MaxMatches)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if err := trainer.WriteDatasetCSV(records, cfg.Training.DatasetPath); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	fmt.Printf("✓ Fetched %d match records in %s\n", len(records), time.Since(start).Round(time.Millisecond))
	fmt.Printf("✓ Dataset written to %s\n", cfg.Training.DatasetPath)
	return nil
}

// buildSource creates the requested data source, or the first enabled one
// when --source is not set. Requesting the simulated source always works,
// even when the config has it disabled.
func buildSource() (datasource.Source, error) {
	httpCfg := datasource.DefaultHTTPClientConfig()
	for _, sc := range cfg.DataIngestion.Sources {
		if sc.Enabled && sc.Name == string(datasource.APIFootballSourceType) && sc.RateLimitPerSecond > 0 {
			httpCfg.RateLimit = sc.RateLimitPerSecond
		}
	}
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, appLog)
	factory := datasource.NewFactory(appLog)

	if sourceName == "" {
		sources, err := factory.NewSources(cfg.DataIngestion, httpClient)
		if err != nil {
			return nil, err
		}
		return sources[0], nil
	}

	for _, sc := range cfg.DataIngestion.Sources {
		if sc.Name == sourceName {
			sc.Enabled = true
			return factory.NewSource(sc, httpClient)
		}
	}
	if sourceName == string(datasource.SimulatedSourceType) {
		return factory.NewSource(config.DataSourceConfig{
			Name:    string(datasource.SimulatedSourceType),
			Enabled: true,
		}, httpClient)
	}
	return nil, fmt.Errorf("source %q is not configured (available: %v)", sourceName, factory.ListAvailableSources())
}
