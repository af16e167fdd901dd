// Package config provides configuration management for the footy-forecast service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Server        ServerConfig        `mapstructure:"server" validate:"required"`
	Model         ModelConfig         `mapstructure:"model" validate:"required"`
	Training      TrainingConfig      `mapstructure:"training" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Host                   string   `mapstructure:"host"`
	Port                   int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
}

// ModelConfig represents the prediction model configuration
type ModelConfig struct {
	Type         string `mapstructure:"type" validate:"required,modeltype"`
	ArtifactPath string `mapstructure:"artifact_path" validate:"required"`
}

// TrainingConfig represents training pipeline configuration
type TrainingConfig struct {
	Samples     int    `mapstructure:"samples" validate:"required,gt=0"`
	Seed        int64  `mapstructure:"seed"`
	DatasetPath string `mapstructure:"dataset_path"`
}

// DataIngestionConfig represents external data ingestion configuration
type DataIngestionConfig struct {
	Sources    []DataSourceConfig `mapstructure:"sources"`
	LeagueIDs  []int              `mapstructure:"league_ids"`
	Season     int                `mapstructure:"season" validate:"omitempty,gte=2000"`
	MaxMatches int                `mapstructure:"max_matches" validate:"omitempty,gt=0"`
	Schedule   ScheduleConfig     `mapstructure:"schedule"`
}

// DataSourceConfig represents a single data source configuration
type DataSourceConfig struct {
	Name               string  `mapstructure:"name" validate:"required,oneof=api_football simulated"`
	Host               string  `mapstructure:"host"`
	APIKey             string  `mapstructure:"api_key"`
	Enabled            bool    `mapstructure:"enabled"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"omitempty,gt=0"`
}

// ScheduleConfig represents cron expressions for background jobs
type ScheduleConfig struct {
	RetrainCron        string `mapstructure:"retrain_cron"`
	DatasetRefreshCron string `mapstructure:"dataset_refresh_cron"`
}

// CacheConfig represents the prediction cache configuration
type CacheConfig struct {
	TTLSeconds     int `mapstructure:"ttl_seconds" validate:"gte=0"`
	CleanupSeconds int `mapstructure:"cleanup_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ServerAddress returns the host:port listen address for the API server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CacheTTL returns the prediction cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CacheCleanupInterval returns the cache cleanup interval as a duration
func (c *Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown timeout as a duration
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// EnabledSources returns the data sources that are enabled
func (c *Config) EnabledSources() []DataSourceConfig {
	var enabled []DataSourceConfig
	for _, src := range c.DataIngestion.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}
