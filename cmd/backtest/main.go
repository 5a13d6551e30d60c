// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hooplytics/courtline/internal/analysis"
	"github.com/hooplytics/courtline/internal/backtest"
	"github.com/hooplytics/courtline/internal/confidence"
	"github.com/hooplytics/courtline/internal/config"
	"github.com/hooplytics/courtline/internal/database"
	"github.com/hooplytics/courtline/internal/datasource"
	"github.com/hooplytics/courtline/internal/logger"
	"github.com/hooplytics/courtline/internal/metrics"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/report"
	"github.com/hooplytics/courtline/internal/repository"
)

var (
	configFile      string
	startOverride   string
	endOverride     string
	focusOverride   string
	snapshotPath    string
	warmupDays      int
	savePredictions bool

	cfg *config.Config
	lg  *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&startOverride, "start-date", "", "Override start date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&endOverride, "end-date", "", "Override end date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&focusOverride, "focus", "", "Restrict predictions to one team")
	rootCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Load games from a JSON snapshot instead of the database")
	rootCmd.Flags().IntVar(&warmupDays, "warmup-days", 120, "Days of games before the start date used to build team state")
	rootCmd.Flags().BoolVar(&savePredictions, "save", false, "Persist prediction records to the database")
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a season chronologically and report model accuracy",
	Long: `Replays completed games in date order, predicting each margin before
folding the result into team state, then reports accuracy summaries,
situational bucket analysis and confidence-gated stake recommendations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := loadSecrets(cfg); err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		lg = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadSecrets(cfg *config.Config) error {
	if os.Getenv("AWS_SECRETS_ENABLED") != "true" {
		return nil
	}
	region := os.Getenv("AWS_REGION")
	secretName := os.Getenv("AWS_SECRET_NAME")
	if region == "" || secretName == "" {
		return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
	}
	return config.LoadSecretsFromAWS(cfg, region, secretName)
}

func run(ctx context.Context) error {
	btCfg, err := buildConfig()
	if err != nil {
		return err
	}

	games, repos, cleanup, err := loadGames(ctx, btCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	engine, err := backtest.NewEngine(btCfg, lg, m)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	result, err := engine.Run(ctx, games)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	confEngine := confidence.NewEngine(confidence.Config{
		BreakEven:         cfg.Confidence.BreakEven,
		ZScore:            cfg.Confidence.ZScore,
		DefaultOdds:       cfg.Confidence.DefaultOdds,
		MinSample:         cfg.Confidence.MinSample,
		SegmentMinSamples: cfg.Confidence.SegmentMinSamples,
	})

	segments := confEngine.BuildSegments(result.Records)
	if m != nil {
		for _, s := range segments {
			if confEngine.ClassifySegment(s).Tier != confidence.TierPass {
				m.SegmentEdgesTotal.Inc()
			}
		}
	}

	console := report.NewConsole()
	console.PrintSummary(result)
	console.PrintBuckets(analysis.NewAnalyzer(cfg.Backtest.BiasThreshold).Analyze(result.Records))
	console.PrintSegments(segments, confEngine)
	console.PrintWorst(result.Records, 5)

	if cfg.Backtest.OutputPath != "" {
		if err := writeRecords(cfg.Backtest.OutputPath, result); err != nil {
			return err
		}
	}

	if savePredictions {
		if repos == nil {
			return fmt.Errorf("--save requires the database, not a snapshot source")
		}
		if err := repos.Prediction.CreateBatch(ctx, result.Records); err != nil {
			return fmt.Errorf("failed to persist predictions: %w", err)
		}
		lg.WithFields(logrus.Fields{
			"run_id":  result.RunID,
			"records": len(result.Records),
		}).Info("Predictions persisted")
	}

	return nil
}

func writeRecords(path string, result *backtest.Result) error {
	data, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records to %s: %w", path, err)
	}
	lg.WithFields(logrus.Fields{
		"path":    path,
		"records": len(result.Records),
	}).Info("Records written")
	return nil
}

func buildConfig() (backtest.Config, error) {
	btCfg, err := backtest.FromConfig(cfg)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("invalid backtest config: %w", err)
	}
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			return backtest.Config{}, fmt.Errorf("invalid start date: %w", err)
		}
		btCfg.StartDate = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			return backtest.Config{}, fmt.Errorf("invalid end date: %w", err)
		}
		btCfg.EndDate = parsed
	}
	if focusOverride != "" {
		btCfg.FocusTeam = focusOverride
	}
	return btCfg, btCfg.Validate()
}

// loadGames returns the replay input including the warm-up window of
// earlier games that build team state before the first prediction.
func loadGames(ctx context.Context, btCfg backtest.Config) ([]models.GameRecord, *repository.Repositories, func(), error) {
	loadFrom := btCfg.StartDate.AddDate(0, 0, -warmupDays)

	if snapshotPath != "" {
		source := datasource.NewSnapshotSource(snapshotPath)
		games, err := source.FetchGames(ctx, loadFrom, btCfg.EndDate)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return games, nil, func() {}, nil
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	games, err := repos.Game.GetByDateRange(ctx, loadFrom, btCfg.EndDate)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to load games: %w", err)
	}
	return games, repos, db.Close, nil
}
