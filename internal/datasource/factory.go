package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// APIFootballSourceType fetches live data from the API-Football service
	APIFootballSourceType SourceType = "api_football"
	// SimulatedSourceType fabricates deterministic offline data
	SimulatedSourceType SourceType = "simulated"
)

// Factory creates Source implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{logger: logger}
}

// NewSource creates a Source from a single source configuration
func (f *Factory) NewSource(cfg config.DataSourceConfig, httpClient *RateLimitedHTTPClient) (Source, error) {
	switch SourceType(cfg.Name) {
	case APIFootballSourceType:
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for %s", cfg.Name)
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required for %s", cfg.Name)
		}
		return NewAPIFootballClient(httpClient, cfg.Host, cfg.APIKey, cfg.Enabled, f.logger), nil

	case SimulatedSourceType:
		return NewSimulatedSource(cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Name)
	}
}

// NewSources creates all enabled data sources from configuration
func (f *Factory) NewSources(dataCfg config.DataIngestionConfig, httpClient *RateLimitedHTTPClient) ([]Source, error) {
	var sources []Source

	for _, srcCfg := range dataCfg.Sources {
		if !srcCfg.Enabled {
			f.logger.WithField("source", srcCfg.Name).Debug("Skipping disabled data source")
			continue
		}

		source, err := f.NewSource(srcCfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", srcCfg.Name, err)
		}

		sources = append(sources, source)
		f.logger.WithField("source", srcCfg.Name).Info("Created data source")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	return sources, nil
}

// ListAvailableSources returns the source types the factory can build
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{APIFootballSourceType, SimulatedSourceType}
}
