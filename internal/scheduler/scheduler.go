package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"
	"property-catalog/internal/logger"

	"github.com/robfig/cron/v3"
)

// ErrAlreadyRunning is returned when a purge is requested while one is in progress.
var ErrAlreadyRunning = errors.New("purge already running")

const defaultCronSpec = "0 3 * * *"

// Scheduler runs the daily purge of soft-deleted listings
type Scheduler struct {
	cron      *cron.Cron
	cleanup   *cleanup.Service
	config    config.CleanupConfig
	log       *logger.Logger
	timeout   time.Duration
	runMu     sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(svc *cleanup.Service, cfg config.CleanupConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		cleanup: svc,
		config:  cfg,
		log:     log.With("component", "scheduler"),
		timeout: time.Hour,
	}
}

// Start registers the daily job. It is a no-op when the purge is disabled.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.log.Info("daily purge is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		s.log.Info("starting daily purge")
		result, err := s.RunNow(context.Background())
		if err != nil {
			s.log.Error("daily purge failed", "error", err)
			return
		}
		s.log.Info("daily purge completed", "purged", result.PurgedCount, "errors", result.ErrorCount)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule purge: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Info("scheduler started", "daily_run_time", s.config.DailyRunTime, "cron", cronSpec)

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.log.Info("scheduler stopped")
	}
}

// RunNow executes the configured purge immediately
func (s *Scheduler) RunNow(ctx context.Context) (*cleanup.PurgeResult, error) {
	return s.RunWith(ctx, cleanup.PurgeConfigFrom(s.config))
}

// RunWith executes a purge with an explicit configuration. Runs never overlap.
func (s *Scheduler) RunWith(ctx context.Context, cfg cleanup.PurgeConfig) (*cleanup.PurgeResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer s.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.cleanup.Purge(ctx, cfg)
}

// PurgeConfig returns the configured purge settings
func (s *Scheduler) PurgeConfig() cleanup.PurgeConfig {
	return cleanup.PurgeConfigFrom(s.config)
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 every day, UTC)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.log.Warn("failed to parse daily run time, using default 03:00", "value", timeStr)
	return defaultCronSpec
}
