// Package main provides the entry point for the data ingestion service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hooplytics/courtline/internal/config"
	"github.com/hooplytics/courtline/internal/database"
	"github.com/hooplytics/courtline/internal/datasource"
	"github.com/hooplytics/courtline/internal/logger"
	"github.com/hooplytics/courtline/internal/metrics"
	"github.com/hooplytics/courtline/internal/repository"
	"github.com/hooplytics/courtline/internal/scheduler"
	"github.com/hooplytics/courtline/internal/service"
)

var (
	configFile string
	startDate  string
	endDate    string
	daemonMode bool
	exportPath string

	cfg *config.Config
	lg  *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&startDate, "start-date", "", "Start of ingestion range (YYYY-MM-DD, default 7 days ago)")
	rootCmd.Flags().StringVar(&endDate, "end-date", "", "End of ingestion range (YYYY-MM-DD, default today)")
	rootCmd.Flags().BoolVar(&daemonMode, "daemon", false, "Run on the configured cron schedule until interrupted")
	rootCmd.Flags().StringVar(&exportPath, "export", "", "Also write ingested games to a JSON snapshot at this path")
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch completed games and closing lines into the database",
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
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	svc := buildIngestionService(repos, m)

	if daemonMode {
		return runDaemon(svc, m)
	}

	from, to, err := resolveRange()
	if err != nil {
		return err
	}

	result, err := svc.IngestRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Printf("Ingestion complete: %s\n", result.String())

	if exportPath != "" {
		games, err := repos.Game.GetByDateRange(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to read back games for export: %w", err)
		}
		if err := datasource.WriteSnapshot(exportPath, games); err != nil {
			return err
		}
		lg.WithFields(logrus.Fields{
			"path":  exportPath,
			"games": len(games),
		}).Info("Snapshot written")
	}

	return nil
}

func buildIngestionService(repos *repository.Repositories, m *metrics.Metrics) *service.IngestionService {
	stats := cfg.DataSources.Stats
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(stats.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = stats.RetryAttempts
	httpCfg.RateLimit = stats.RateLimitPerSecond

	var source datasource.GameSource
	if cfg.DataSources.Snapshot.Path != "" {
		source = datasource.NewSnapshotSource(cfg.DataSources.Snapshot.Path)
	} else {
		source = datasource.NewStatsAPIClient(
			datasource.NewRateLimitedHTTPClient(httpCfg, lg),
			stats.BaseURL,
			stats.APIKey,
			stats.Season,
			time.Duration(stats.CacheTTLSeconds)*time.Second,
			lg,
		)
	}

	var spreads datasource.SpreadSource
	odds := cfg.DataSources.Odds
	if odds.BaseURL != "" && odds.APIKey != "" {
		oddsCfg := datasource.DefaultHTTPClientConfig()
		if odds.TimeoutSeconds > 0 {
			oddsCfg.Timeout = time.Duration(odds.TimeoutSeconds) * time.Second
		}
		if odds.RateLimitPerSecond > 0 {
			oddsCfg.RateLimit = odds.RateLimitPerSecond
		}
		spreads = datasource.NewOddsAPIClient(
			datasource.NewRateLimitedHTTPClient(oddsCfg, lg),
			odds.BaseURL,
			odds.APIKey,
			odds.Bookmaker,
			lg,
		)
	}

	return service.NewIngestionService(source, spreads, repos.Game, m, lg, cfg.Ingestion.BatchSize)
}

func resolveRange() (time.Time, time.Time, error) {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -7)

	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
		from = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return from, to, nil
}

func runDaemon(svc *service.IngestionService, m *metrics.Metrics) error {
	sched := scheduler.NewScheduler(svc, lg)
	if err := sched.ScheduleSync(cfg.Ingestion.Schedule, 7); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	var metricsServer *http.Server
	if m != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			lg.WithField("port", cfg.Metrics.Port).Info("Metrics server started")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down")
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			lg.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	return nil
}
