package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	appcashbox "github.com/estudio/backend/internal/application/cashbox"
	"github.com/estudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// cronTickerInterval is the interval at which the scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// Common errors
var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrInvalidConfig       = errors.New("invalid scheduler configuration")
)

// Sweeper closes every drawer left open on a past date. The drawer
// application service implements it.
type Sweeper interface {
	AutoCloseStale(ctx context.Context) (*appcashbox.AutoCloseStaleResult, error)
}

// AutoCloseSchedulerConfig holds configuration for the auto-close scheduler
type AutoCloseSchedulerConfig struct {
	Enabled bool
	// CronHour is the hour (0-23), in business time, to run the sweep
	CronHour int
	// CronMinute is the minute (0-59) to run the sweep
	CronMinute int
	// JobTimeout is the maximum time a sweep can run
	JobTimeout time.Duration
}

// DefaultAutoCloseSchedulerConfig returns default scheduler configuration.
// Defaults to 00:05, just after the business day rolls over.
func DefaultAutoCloseSchedulerConfig() AutoCloseSchedulerConfig {
	return AutoCloseSchedulerConfig{
		Enabled:    true,
		CronHour:   0,
		CronMinute: 5,
		JobTimeout: 5 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract
// hour and minute. Returns defaults (00:05) if the expression is empty.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 0
	minute = 5

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 5); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 0); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 0, 5, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 0, 5, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// AutoCloseScheduler sweeps stale open drawers once a day. The check runs
// on the business clock, so "past midnight" means past midnight in the
// practice's timezone regardless of where the server runs.
type AutoCloseScheduler struct {
	config  AutoCloseSchedulerConfig
	sweeper Sweeper
	clock   shared.Clock
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewAutoCloseScheduler creates a new AutoCloseScheduler
func NewAutoCloseScheduler(
	config AutoCloseSchedulerConfig,
	sweeper Sweeper,
	clock shared.Clock,
	logger *zap.Logger,
) *AutoCloseScheduler {
	return &AutoCloseScheduler{
		config:  config,
		sweeper: sweeper,
		clock:   clock,
		logger:  logger.Named("auto-close"),
	}
}

// Start starts the scheduler
func (s *AutoCloseScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Drawer auto-close scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the scheduler
func (s *AutoCloseScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Drawer auto-close scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Drawer auto-close scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *AutoCloseScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.shouldRun(s.clock.Now()) {
				s.runSweep(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

func (s *AutoCloseScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

func (s *AutoCloseScheduler) calculateNextRunTime() {
	now := s.clock.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

func (s *AutoCloseScheduler) runSweep(ctx context.Context) {
	s.logger.Info("Starting stale drawer sweep")

	now := s.clock.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	sweepCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	result, err := s.sweeper.AutoCloseStale(sweepCtx)
	if err != nil {
		s.logger.Error("Stale drawer sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("Stale drawer sweep finished",
		zap.Int("closed", len(result.Closed)),
		zap.Int("failed", len(result.Failed)),
	)
}

// TriggerManualRun triggers a sweep outside the schedule.
// Uses a background context so the sweep survives the HTTP request that
// triggered it.
func (s *AutoCloseScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runSweep(context.Background())
	return nil
}

// GetStatus returns the current status of the scheduler
func (s *AutoCloseScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"cron_hour":   s.config.CronHour,
		"cron_minute": s.config.CronMinute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled sweep will occur
func (s *AutoCloseScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
