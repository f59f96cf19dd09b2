package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// ObligationMaintainer is the slice of the obligation service the scheduler
// drives: overdue relabelling and recurring installment generation.
type ObligationMaintainer interface {
	RefreshAllStatuses(ctx context.Context, today time.Time) (int, error)
	ProcessRecurring(ctx context.Context, asOf time.Time) (int, error)
}

// MaintenanceConfig holds configuration for the maintenance scheduler
type MaintenanceConfig struct {
	Enabled bool
	// Interval is how often maintenance runs
	Interval time.Duration
	// RunOnStart runs one maintenance pass immediately when the scheduler starts
	RunOnStart bool
}

// DefaultMaintenanceConfig returns default maintenance configuration
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		Enabled:    true,
		Interval:   time.Hour,
		RunOnStart: true,
	}
}

// MaintenanceScheduler periodically refreshes overdue labels and spawns
// recurring installments for both sides of the ledger.
type MaintenanceScheduler struct {
	config      MaintenanceConfig
	payables    ObligationMaintainer
	receivables ObligationMaintainer
	logger      *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewMaintenanceScheduler creates a new maintenance scheduler
func NewMaintenanceScheduler(
	config MaintenanceConfig,
	payables ObligationMaintainer,
	receivables ObligationMaintainer,
	logger *zap.Logger,
) *MaintenanceScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceScheduler{
		config:      config,
		payables:    payables,
		receivables: receivables,
		logger:      logger,
	}
}

// Start starts the maintenance loop
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Ledger maintenance scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)

	return nil
}

// Stop gracefully stops the maintenance loop
func (s *MaintenanceScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Ledger maintenance scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Ledger maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow triggers one maintenance pass outside the regular schedule
func (s *MaintenanceScheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}

	s.runOnce(ctx)
	return nil
}

// runLoop runs maintenance at the configured interval
func (s *MaintenanceScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one maintenance pass over both polarities.
// A failing step is logged and does not stop the others.
func (s *MaintenanceScheduler) runOnce(ctx context.Context) {
	now := time.Now()

	for _, side := range []struct {
		name       string
		maintainer ObligationMaintainer
	}{
		{"payables", s.payables},
		{"receivables", s.receivables},
	} {
		if side.maintainer == nil {
			continue
		}

		refreshed, err := side.maintainer.RefreshAllStatuses(ctx, now)
		if err != nil {
			s.logger.Error("Overdue refresh failed",
				zap.String("ledger", side.name),
				zap.Error(err),
			)
		} else if refreshed > 0 {
			s.logger.Info("Overdue refresh completed",
				zap.String("ledger", side.name),
				zap.Int("relabelled", refreshed),
			)
		}

		spawned, err := side.maintainer.ProcessRecurring(ctx, now)
		if err != nil {
			s.logger.Error("Recurring generation failed",
				zap.String("ledger", side.name),
				zap.Error(err),
			)
		} else if spawned > 0 {
			s.logger.Info("Recurring generation completed",
				zap.String("ledger", side.name),
				zap.Int("spawned", spawned),
			)
		}
	}
}
