package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	appsnapshot "github.com/finbook/backend/internal/application/snapshot"
	"github.com/finbook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SnapshotMaintainer is the slice of the balance snapshot service the
// scheduler drives.
type SnapshotMaintainer interface {
	RefreshRecent(ctx context.Context) ([]appsnapshot.BalanceSnapshotResponse, error)
	CleanupOld(ctx context.Context) (int64, error)
}

// BalanceSnapshotSchedulerConfig holds configuration for the nightly
// balance snapshot jobs.
type BalanceSnapshotSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// RefreshHour/RefreshMinute is the daily time (24h clock) when the
	// current and previous months are recomputed
	RefreshHour   int
	RefreshMinute int

	// CleanupEnabled enables retention cleanup of old snapshots
	CleanupEnabled bool

	// CleanupHour is the hour (0-23) when cleanup runs, kept apart from
	// RefreshHour so the two jobs never overlap
	CleanupHour int

	// JobTimeout bounds a single refresh or cleanup attempt
	JobTimeout time.Duration

	// RetryAttempts and RetryDelay control how a failed refresh is retried
	// within the same night
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultBalanceSnapshotSchedulerConfig returns default configuration
func DefaultBalanceSnapshotSchedulerConfig() BalanceSnapshotSchedulerConfig {
	return BalanceSnapshotSchedulerConfig{
		Enabled:        true,
		RefreshHour:    2,
		RefreshMinute:  0,
		CleanupEnabled: true,
		CleanupHour:    3,
		JobTimeout:     30 * time.Minute,
		RetryAttempts:  3,
		RetryDelay:     5 * time.Minute,
	}
}

// BalanceSnapshotScheduler runs the snapshot refresh and retention cleanup
// once per day at their configured hours.
type BalanceSnapshotScheduler struct {
	service SnapshotMaintainer
	logger  *zap.Logger
	config  BalanceSnapshotSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBalanceSnapshotScheduler creates a new balance snapshot scheduler.
// Zero or negative timeout and retry settings fall back to the defaults.
func NewBalanceSnapshotScheduler(
	service SnapshotMaintainer,
	logger *zap.Logger,
	config BalanceSnapshotSchedulerConfig,
) *BalanceSnapshotScheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = 30 * time.Minute
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Minute
	}

	return &BalanceSnapshotScheduler{
		service: service,
		logger:  logger,
		config:  config,
	}
}

// Start launches the nightly loops. Starting an already running or disabled
// scheduler is a no-op.
func (s *BalanceSnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Balance snapshot scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runDailyRefresh(ctx)

	if s.config.CleanupEnabled {
		s.wg.Add(1)
		go s.runDailyCleanup(ctx)
	}

	s.logger.Info("Balance snapshot scheduler started",
		zap.Int("refresh_hour", s.config.RefreshHour),
		zap.Int("refresh_minute", s.config.RefreshMinute),
		zap.Bool("cleanup_enabled", s.config.CleanupEnabled),
		zap.Int("cleanup_hour", s.config.CleanupHour),
	)

	return nil
}

// Stop cancels the loops and waits for in-flight runs to finish, bounded by
// the given context.
func (s *BalanceSnapshotScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Balance snapshot scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Balance snapshot scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *BalanceSnapshotScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *BalanceSnapshotScheduler) runDailyRefresh(ctx context.Context) {
	defer s.wg.Done()

	for {
		nextRun := nextDailyRun(time.Now(), s.config.RefreshHour, s.config.RefreshMinute)
		s.logger.Info("Nightly balance refresh scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", time.Until(nextRun)),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Balance refresh loop stopping")
			return
		case <-time.After(time.Until(nextRun)):
			s.executeRefresh(ctx)
		}
	}
}

func (s *BalanceSnapshotScheduler) runDailyCleanup(ctx context.Context) {
	defer s.wg.Done()

	for {
		nextRun := nextDailyRun(time.Now(), s.config.CleanupHour, 0)
		s.logger.Info("Nightly snapshot cleanup scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", time.Until(nextRun)),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Snapshot cleanup loop stopping")
			return
		case <-time.After(time.Until(nextRun)):
			s.executeCleanup(ctx)
		}
	}
}

// executeRefresh recomputes the recent monthly snapshots, retrying within
// the same night when an attempt fails.
func (s *BalanceSnapshotScheduler) executeRefresh(ctx context.Context) {
	start := time.Now()

	var refreshed int
	var err error
	for attempt := 1; attempt <= s.config.RetryAttempts; attempt++ {
		refreshed, err = s.refreshOnce(ctx)
		if err == nil {
			break
		}

		s.logger.Warn("Balance snapshot refresh attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.config.RetryAttempts),
			zap.Error(err),
		)
		if attempt == s.config.RetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.RetryDelay):
		}
	}

	if err != nil {
		s.logger.Error("Nightly balance snapshot refresh failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Nightly balance snapshot refresh completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("periods_refreshed", refreshed),
	)
}

func (s *BalanceSnapshotScheduler) refreshOnce(ctx context.Context) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	var refreshed int
	var err error
	telemetry.WithProfilingLabels(runCtx, telemetry.OperationLabels("snapshot_refresh", nil), func(c context.Context) {
		var snapshots []appsnapshot.BalanceSnapshotResponse
		snapshots, err = s.service.RefreshRecent(c)
		refreshed = len(snapshots)
	})
	if err != nil {
		return 0, err
	}
	return refreshed, nil
}

// executeCleanup prunes snapshots past the retention window. A failed
// cleanup is retried by the next nightly run.
func (s *BalanceSnapshotScheduler) executeCleanup(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	var deleted int64
	var err error
	telemetry.WithProfilingLabels(runCtx, telemetry.OperationLabels("snapshot_cleanup", nil), func(c context.Context) {
		deleted, err = s.service.CleanupOld(c)
	})
	if err != nil {
		s.logger.Error("Snapshot retention cleanup failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Snapshot retention cleanup completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int64("deleted_count", deleted),
	)
}

// TriggerImmediateRefresh runs a refresh now, outside the nightly schedule
func (s *BalanceSnapshotScheduler) TriggerImmediateRefresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate balance snapshot refresh")

	go func() {
		defer s.wg.Done()
		s.executeRefresh(ctx)
	}()

	return nil
}

// TriggerImmediateCleanup runs a retention cleanup now
func (s *BalanceSnapshotScheduler) TriggerImmediateCleanup(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate snapshot cleanup")

	go func() {
		defer s.wg.Done()
		s.executeCleanup(ctx)
	}()

	return nil
}

// nextDailyRun returns the next occurrence of hour:minute strictly after now.
func nextDailyRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// ParseCronSchedule reads the minute and hour fields of a five field cron
// line. Only daily schedules are supported; the day, month and weekday
// fields are ignored. Empty, partial or wildcard fields fall back to 02:00.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = 2, 0

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if v, convErr := strconv.Atoi(parts[0]); convErr == nil {
		minute = v
	}
	if v, convErr := strconv.Atoi(parts[1]); convErr == nil {
		hour = v
	}

	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("cron minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("cron hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}
