// Package config provides configuration management for the Courtline application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing config file leaves defaults and environment
// variables in charge.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("COURTLINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults seeds the production model parameters so a minimal config
// file only has to name the date range and database.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "courtline")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("model.elo_k", 20.0)
	v.SetDefault("model.elo_home_advantage", 70.0)
	v.SetDefault("model.elo_fatigue_points", 46.0)
	v.SetDefault("model.elo_to_spread", 28.0)
	v.SetDefault("model.nr_home_advantage", 2.5)
	v.SetDefault("model.nr_fatigue", 3.0)
	v.SetDefault("model.rest_bonus", 1.0)
	v.SetDefault("model.rest_bonus_days", 2)
	v.SetDefault("model.elo_weight", 0.55)
	v.SetDefault("model.nr_weight", 0.45)
	v.SetDefault("model.elite_net_rating", 6.0)
	v.SetDefault("model.elite_penalty", 2.0)
	v.SetDefault("model.streak_min", 3)
	v.SetDefault("model.streak_per_game", 0.3)
	v.SetDefault("model.streak_cap", 3.0)
	v.SetDefault("model.missing_penalty", 1.25)
	v.SetDefault("model.pace_baseline", 200.0)
	v.SetDefault("model.pace_damp", 0.02)
	v.SetDefault("model.margin_clamp", 15.0)
	v.SetDefault("model.window_weights.last4", 0.40)
	v.SetDefault("model.window_weights.last7", 0.30)
	v.SetDefault("model.window_weights.last10", 0.20)
	v.SetDefault("model.window_weights.season", 0.10)
	v.SetDefault("model.window_capacity", 15)
	v.SetDefault("model.blend_weight_floor", 0.3)
	v.SetDefault("model.blend_decay_games", 82)

	v.SetDefault("backtest.min_prior_games", 5)
	v.SetDefault("backtest.bias_threshold", 3.0)

	v.SetDefault("confidence.break_even", 0.524)
	v.SetDefault("confidence.z_score", 1.96)
	v.SetDefault("confidence.default_odds", 1.91)
	v.SetDefault("confidence.min_sample", 15)
	v.SetDefault("confidence.segment_min_samples", map[string]int{
		"overall":      20,
		"home":         12,
		"road":         12,
		"vs_tier":      8,
		"back_to_back": 10,
	})

	v.SetDefault("data_sources.stats.timeout_seconds", 30)
	v.SetDefault("data_sources.stats.retry_attempts", 3)
	v.SetDefault("data_sources.stats.rate_limit_per_second", 2.0)
	v.SetDefault("data_sources.stats.cache_ttl_seconds", 300)
	v.SetDefault("data_sources.odds.bookmaker", "draftkings")
	v.SetDefault("data_sources.odds.timeout_seconds", 30)
	v.SetDefault("data_sources.odds.rate_limit_per_second", 1.0)

	v.SetDefault("ingestion.schedule", "0 6 * * *")
	v.SetDefault("ingestion.batch_size", 100)

	v.SetDefault("tracking.ledger_path", "data/prediction_tracker.json")
	v.SetDefault("tracking.days_ahead", 3)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
