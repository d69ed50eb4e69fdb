// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AlertRefresher recomputes the closing alerts of every known tenant
type AlertRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// AlertRefreshConfig holds configuration for the alert refresh loop
type AlertRefreshConfig struct {
	// Interval between two full refreshes
	Interval time.Duration
	// RunOnStart refreshes once immediately instead of waiting a full interval
	RunOnStart bool
	// Timeout bounds a single refresh pass; zero means Interval
	Timeout time.Duration
}

// DefaultAlertRefreshConfig returns the default refresh configuration
func DefaultAlertRefreshConfig() AlertRefreshConfig {
	return AlertRefreshConfig{
		Interval:   30 * time.Minute,
		RunOnStart: true,
	}
}

// AlertRefreshScheduler periodically recomputes alert sets. Reminder and
// overdue alerts depend on the clock, not only on closing events.
type AlertRefreshScheduler struct {
	config    AlertRefreshConfig
	refresher AlertRefresher
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
}

// NewAlertRefreshScheduler creates a new scheduler
func NewAlertRefreshScheduler(config AlertRefreshConfig, refresher AlertRefresher, logger *zap.Logger) (*AlertRefreshScheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if refresher == nil {
		return nil, fmt.Errorf("%w: refresher is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertRefreshScheduler{
		config:    config,
		refresher: refresher,
		logger:    logger.Named("alert_refresh"),
	}, nil
}

// Start starts the refresh loop. Starting twice is a no-op.
func (s *AlertRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Alert refresh scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight refresh, or for ctx
func (s *AlertRefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Alert refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *AlertRefreshScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns when the last refresh pass finished
func (s *AlertRefreshScheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *AlertRefreshScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.refresh(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *AlertRefreshScheduler) refresh(ctx context.Context) {
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = s.config.Interval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	refreshed, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Warn("Alert refresh finished with errors",
			zap.Int("tenants_refreshed", refreshed),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("Alert refresh finished",
			zap.Int("tenants_refreshed", refreshed),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()
}
