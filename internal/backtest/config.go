package backtest

import (
	"fmt"
	"time"

	"github.com/hooplytics/courtline/internal/config"
	"github.com/hooplytics/courtline/internal/predictor"
)

// Config carries everything one replay run needs: the date range, the
// model parameters, and the prediction gate.
type Config struct {
	StartDate     time.Time
	EndDate       time.Time
	MinPriorGames int
	FocusTeam     string
	Params        predictor.Params
}

// FromConfig converts app config to a replay config.
func FromConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is required")
	}
	start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid end date: %w", err)
	}

	bt := Config{
		StartDate:     start,
		EndDate:       end,
		MinPriorGames: cfg.Backtest.MinPriorGames,
		FocusTeam:     cfg.Backtest.FocusTeam,
		Params:        cfg.Model,
	}

	return bt, bt.Validate()
}

// Validate validates replay config parameters
func (c Config) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if c.MinPriorGames < 0 {
		return fmt.Errorf("min prior games cannot be negative")
	}
	if c.Params.EloToSpread == 0 {
		return fmt.Errorf("elo to spread divisor cannot be zero")
	}
	weights := c.Params.WindowWeights
	sum := weights.Last4 + weights.Last7 + weights.Last10 + weights.Season
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("window weights must sum to 1, got %.3f", sum)
	}
	return nil
}
