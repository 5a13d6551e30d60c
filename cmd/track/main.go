// Package main provides the entry point for the forward-testing
// prediction tracker: record predictions before games, settle them
// after, report accuracy.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hooplytics/courtline/internal/config"
	"github.com/hooplytics/courtline/internal/database"
	"github.com/hooplytics/courtline/internal/datasource"
	"github.com/hooplytics/courtline/internal/logger"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/report"
	"github.com/hooplytics/courtline/internal/repository"
	"github.com/hooplytics/courtline/internal/tracking"
)

var (
	configFile   string
	ledgerPath   string
	snapshotPath string
	fixturesPath string
	historyDays  int

	cfg *config.Config
	lg  *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "Override the configured ledger path")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "Load completed games from a JSON snapshot instead of the database")

	recordCmd.Flags().StringVar(&fixturesPath, "fixtures", "", "JSON snapshot of upcoming games to predict (required)")
	recordCmd.Flags().IntVar(&historyDays, "history-days", 120, "Days of completed games used to build team state")
	_ = recordCmd.MarkFlagRequired("fixtures")

	rootCmd.AddCommand(recordCmd, updateCmd, reportCmd)
}

var rootCmd = &cobra.Command{
	Use:   "track",
	Short: "Record, settle and report forward predictions",
	Long: `Forward-tests the margin model on real upcoming games: record
predictions from current standings before tip-off, settle them against
final scores afterwards, and report accuracy against the 52.4%
break-even.`,
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
		if ledgerPath == "" {
			ledgerPath = cfg.Tracking.LedgerPath
		}
		return nil
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Predict upcoming games and append them to the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd.Context())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Settle pending predictions against final scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd.Context())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the tracker accuracy report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := tracking.LoadLedger(ledgerPath)
		if err != nil {
			return err
		}
		report.NewConsole().PrintTracker(ledger)
		return nil
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

func runRecord(ctx context.Context) error {
	now := time.Now().UTC().Truncate(24 * time.Hour)

	history, cleanup, err := loadCompletedGames(ctx, now.AddDate(0, 0, -historyDays), now)
	if err != nil {
		return err
	}
	defer cleanup()

	horizon := now.AddDate(0, 0, cfg.Tracking.DaysAhead)
	fixtures, err := datasource.NewSnapshotSource(fixturesPath).FetchGames(ctx, now, horizon)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		fmt.Println("No upcoming games in the tracking window")
		return nil
	}

	ledger, err := tracking.LoadLedger(ledgerPath)
	if err != nil {
		return err
	}

	tracker := tracking.NewTracker(cfg.Model, cfg.Backtest.MinPriorGames, lg)
	states := tracker.BuildStates(history)
	added := tracker.Record(ledger, states, fixtures, fetchSpreads(ctx, fixtures))

	if err := ledger.Save(ledgerPath); err != nil {
		return err
	}
	fmt.Printf("Recorded %d new predictions (%d tracked total)\n", added, len(ledger.Predictions))
	return nil
}

func runUpdate(ctx context.Context) error {
	ledger, err := tracking.LoadLedger(ledgerPath)
	if err != nil {
		return err
	}
	pending := ledger.Pending()
	if len(pending) == 0 {
		fmt.Println("No pending predictions to settle")
		return nil
	}

	from, to := pending[0].Date, pending[0].Date
	for _, p := range pending {
		if p.Date.Before(from) {
			from = p.Date
		}
		if p.Date.After(to) {
			to = p.Date
		}
	}

	results, cleanup, err := loadCompletedGames(ctx, from, to)
	if err != nil {
		return err
	}
	defer cleanup()

	tracker := tracking.NewTracker(cfg.Model, cfg.Backtest.MinPriorGames, lg)
	settled := tracker.Settle(ledger, results)

	if err := ledger.Save(ledgerPath); err != nil {
		return err
	}
	fmt.Printf("Settled %d predictions (%d still pending)\n", settled, len(ledger.Pending()))
	return nil
}

// loadCompletedGames reads finished games from the snapshot when one is
// given, the database otherwise.
func loadCompletedGames(ctx context.Context, from, to time.Time) ([]models.GameRecord, func(), error) {
	if snapshotPath != "" {
		games, err := datasource.NewSnapshotSource(snapshotPath).FetchGames(ctx, from, to)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return games, func() {}, nil
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	games, err := repos.Game.GetByDateRange(ctx, from, to)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to load games: %w", err)
	}
	return games, db.Close, nil
}

// fetchSpreads pulls current lines for the fixture days when the odds
// source is configured. Line failures degrade to predictions without
// spreads.
func fetchSpreads(ctx context.Context, fixtures []models.GameRecord) map[string]float64 {
	odds := cfg.DataSources.Odds
	if odds.BaseURL == "" || odds.APIKey == "" {
		return nil
	}

	httpCfg := datasource.DefaultHTTPClientConfig()
	if odds.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(odds.TimeoutSeconds) * time.Second
	}
	if odds.RateLimitPerSecond > 0 {
		httpCfg.RateLimit = odds.RateLimitPerSecond
	}
	client := datasource.NewOddsAPIClient(
		datasource.NewRateLimitedHTTPClient(httpCfg, lg),
		odds.BaseURL,
		odds.APIKey,
		odds.Bookmaker,
		lg,
	)

	days := map[time.Time]bool{}
	for _, g := range fixtures {
		days[g.Date.Truncate(24*time.Hour)] = true
	}

	spreads := map[string]float64{}
	for day := range days {
		daySpreads, err := client.FetchSpreads(ctx, day)
		if err != nil {
			lg.WithError(err).WithField("date", day.Format("2006-01-02")).Warn("Failed to fetch spreads")
			continue
		}
		for k, v := range daySpreads {
			spreads[k] = v
		}
	}
	return spreads
}
