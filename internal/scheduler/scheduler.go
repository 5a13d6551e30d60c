// Package scheduler runs recurring ingestion jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hooplytics/courtline/internal/service"
)

// Scheduler manages scheduled data ingestion jobs
type Scheduler struct {
	cron         *cron.Cron
	ingestionSvc *service.IngestionService
	logger       *logrus.Logger
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(ingestionSvc *service.IngestionService, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc: ingestionSvc,
		logger:       logger,
		jobIDs:       make([]cron.EntryID, 0),
	}
}

// ScheduleSync schedules a recurring sync of the trailing window of
// games, catching stat corrections and late spread postings.
func (s *Scheduler) ScheduleSync(cronExpression string, lookbackDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if lookbackDays <= 0 {
		lookbackDays = 7
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		endDate := time.Now().UTC()
		startDate := endDate.AddDate(0, 0, -lookbackDays)

		result, err := s.ingestionSvc.IngestRange(ctx, startDate, endDate)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled sync failed")
			return
		}
		s.logger.WithField("result", result.String()).Info("Scheduled sync completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled sync job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
