// Package config provides configuration management for the Courtline application.
package config

import (
	"fmt"

	"github.com/hooplytics/courtline/internal/predictor"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig        `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig   `mapstructure:"database" validate:"required"`
	Model       predictor.Params `mapstructure:"model" validate:"required"`
	Backtest    BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Confidence  ConfidenceConfig `mapstructure:"confidence" validate:"required"`
	DataSources DataSourcesConfig `mapstructure:"data_sources" validate:"required"`
	Ingestion   IngestionConfig  `mapstructure:"ingestion" validate:"required"`
	Tracking    TrackingConfig   `mapstructure:"tracking" validate:"required"`
	Metrics     MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// BacktestConfig represents replay configuration
type BacktestConfig struct {
	StartDate     string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	MinPriorGames int     `mapstructure:"min_prior_games" validate:"gte=0"`
	FocusTeam     string  `mapstructure:"focus_team"`
	BiasThreshold float64 `mapstructure:"bias_threshold" validate:"gte=0"`
	OutputPath    string  `mapstructure:"output_path"`
}

// ConfidenceConfig represents bet-recommendation configuration
type ConfidenceConfig struct {
	BreakEven         float64        `mapstructure:"break_even" validate:"required,gt=0,lt=1"`
	ZScore            float64        `mapstructure:"z_score" validate:"required,gt=0"`
	DefaultOdds       float64        `mapstructure:"default_odds" validate:"required,gt=1"`
	MinSample         int            `mapstructure:"min_sample" validate:"required,gt=0"`
	SegmentMinSamples map[string]int `mapstructure:"segment_min_samples"`
}

// DataSourcesConfig groups the external data providers
type DataSourcesConfig struct {
	Stats    StatsAPIConfig `mapstructure:"stats" validate:"required"`
	Odds     OddsAPIConfig  `mapstructure:"odds"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// StatsAPIConfig represents the league stats API configuration
type StatsAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey             string  `mapstructure:"api_key"`
	Season             string  `mapstructure:"season"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// OddsAPIConfig represents the odds provider configuration
type OddsAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey             string  `mapstructure:"api_key"`
	Bookmaker          string  `mapstructure:"bookmaker"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"omitempty,gt=0"`
}

// SnapshotConfig points at a local JSON game file used instead of, or
// alongside, the live APIs.
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

// IngestionConfig represents data ingestion scheduling
type IngestionConfig struct {
	Schedule  string `mapstructure:"schedule" validate:"required"`
	BatchSize int    `mapstructure:"batch_size" validate:"required,gt=0"`
}

// TrackingConfig represents the forward-testing prediction ledger
type TrackingConfig struct {
	LedgerPath string `mapstructure:"ledger_path" validate:"required"`
	DaysAhead  int    `mapstructure:"days_ahead" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
