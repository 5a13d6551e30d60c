// Package service orchestrates data flows between the external sources
// and the repositories.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hooplytics/courtline/internal/datasource"
	"github.com/hooplytics/courtline/internal/metrics"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/repository"
)

// IngestionService fetches completed games from a source, attaches
// closing spreads when an odds source is available, and upserts the
// result into the game repository.
type IngestionService struct {
	source      datasource.GameSource
	spreads     datasource.SpreadSource
	gameRepo    repository.GameRepository
	promMetrics *metrics.Metrics
	logger      *logrus.Logger
	batchSize   int
}

// IngestionResult summarizes one ingestion run.
type IngestionResult struct {
	Fetched  int
	Written  int
	Spreads  int
	Errors   int
	Duration time.Duration
}

// String formats the result for log lines.
func (r IngestionResult) String() string {
	return fmt.Sprintf("fetched=%d written=%d spreads=%d errors=%d duration=%s",
		r.Fetched, r.Written, r.Spreads, r.Errors, r.Duration.Round(time.Millisecond))
}

// NewIngestionService creates a new ingestion service. The spread
// source and metrics are optional.
func NewIngestionService(
	source datasource.GameSource,
	spreads datasource.SpreadSource,
	gameRepo repository.GameRepository,
	promMetrics *metrics.Metrics,
	logger *logrus.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &IngestionService{
		source:      source,
		spreads:     spreads,
		gameRepo:    gameRepo,
		promMetrics: promMetrics,
		logger:      logger,
		batchSize:   batchSize,
	}
}

// IngestRange fetches and stores completed games for a date range.
func (s *IngestionService) IngestRange(ctx context.Context, startDate, endDate time.Time) (IngestionResult, error) {
	started := time.Now()
	result := IngestionResult{}

	s.logger.WithFields(logrus.Fields{
		"source": s.source.Name(),
		"from":   startDate.Format("2006-01-02"),
		"to":     endDate.Format("2006-01-02"),
	}).Info("Starting ingestion")

	games, err := s.source.FetchGames(ctx, startDate, endDate)
	if err != nil {
		result.Errors++
		if s.promMetrics != nil {
			s.promMetrics.IngestionErrorsTotal.Inc()
		}
		return result, fmt.Errorf("failed to fetch games: %w", err)
	}
	result.Fetched = len(games)

	s.attachSpreads(ctx, games, &result)

	for i := 0; i < len(games); i += s.batchSize {
		end := i + s.batchSize
		if end > len(games) {
			end = len(games)
		}
		written, err := s.gameRepo.UpsertBatch(ctx, games[i:end])
		if err != nil {
			result.Errors++
			if s.promMetrics != nil {
				s.promMetrics.IngestionErrorsTotal.Inc()
			}
			s.logger.WithError(err).Warn("Failed to write batch, continuing")
			continue
		}
		result.Written += written
		if s.promMetrics != nil {
			s.promMetrics.GamesIngestedTotal.Add(float64(written))
		}
	}

	result.Duration = time.Since(started)
	if s.promMetrics != nil {
		s.promMetrics.IngestionDuration.Observe(result.Duration.Seconds())
	}

	s.logger.WithField("result", result.String()).Info("Ingestion complete")
	return result, nil
}

// attachSpreads decorates games with closing lines, one odds request
// per distinct game date. Spread failures degrade to games without
// lines rather than failing the run.
func (s *IngestionService) attachSpreads(ctx context.Context, games []models.GameRecord, result *IngestionResult) {
	if s.spreads == nil || !s.spreads.IsEnabled() {
		return
	}

	byDate := map[time.Time][]int{}
	for i := range games {
		day := games[i].Date.Truncate(24 * time.Hour)
		byDate[day] = append(byDate[day], i)
	}

	for day, indexes := range byDate {
		spreads, err := s.spreads.FetchSpreads(ctx, day)
		if err != nil {
			result.Errors++
			s.logger.WithError(err).WithField("date", day.Format("2006-01-02")).Warn("Failed to fetch spreads")
			continue
		}
		for _, i := range indexes {
			g := &games[i]
			if point, ok := spreads[datasource.MatchupKey(g.Date, g.HomeTeam, g.AwayTeam)]; ok {
				spread := point
				g.Spread = &spread
				result.Spreads++
			}
		}
	}
}
