package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const lockKey = "escalation:lock"

// Scheduler runs the sweep on a cron schedule. Only one replica sweeps per
// tick; the others see the Redis lock and skip.
type Scheduler struct {
	cfg     config.EscalationConfig
	sweeper *Sweeper
	locks   storage.LockStore
	cron    *cron.Cron
	now     func() time.Time
}

func NewScheduler(cfg config.EscalationConfig, sweeper *Sweeper, locks storage.LockStore) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("escalation timezone %q: %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		cfg:     cfg,
		sweeper: sweeper,
		locks:   locks,
		now:     time.Now,
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := s.cron.AddFunc(cfg.Cron, func() { s.Tick(context.Background()) }); err != nil {
		return nil, fmt.Errorf("escalation cron %q: %w", cfg.Cron, err)
	}
	return s, nil
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("escalation scheduler started", "cron", s.cfg.Cron, "timezone", s.cfg.Timezone)
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	slog.Info("escalation scheduler stopped")
}

// Tick runs one locked sweep and records the watermark. Errors are logged,
// never returned, so a bad tick cannot stop the next one.
func (s *Scheduler) Tick(ctx context.Context) {
	token := uuid.NewString()
	acquired, err := s.locks.AcquireLock(ctx, lockKey, token, s.cfg.LockTTL)
	if err != nil {
		slog.Warn("escalation lock unavailable, sweeping anyway", "error", err)
	} else if !acquired {
		slog.Info("escalation tick skipped: another replica holds the lock")
		return
	} else {
		defer func() {
			if err := s.locks.ReleaseLock(context.WithoutCancel(ctx), lockKey, token); err != nil {
				slog.Warn("failed to release escalation lock", "error", err)
			}
		}()
	}

	if _, err := s.RunOnce(ctx); err != nil {
		slog.Error("escalation sweep failed", "error", err)
	}
}

// RunOnce sweeps immediately without taking the lock and stores the result as
// the last-run watermark.
func (s *Scheduler) RunOnce(ctx context.Context) (models.SweepRun, error) {
	run, err := s.sweeper.Sweep(ctx, s.now())
	if err != nil {
		return run, err
	}

	slog.Info("escalation sweep finished",
		"scanned", run.Scanned,
		"promoted", run.Promoted,
		"failed", run.Failed,
		"skipped", run.Skipped,
		"duration", run.Duration(),
	)

	if err := s.locks.SaveLastSweep(ctx, run); err != nil {
		slog.Warn("failed to save escalation watermark", "error", err)
	}
	return run, nil
}

// LastRun returns the most recent sweep, or nil before the first one.
func (s *Scheduler) LastRun(ctx context.Context) (*models.SweepRun, error) {
	return s.locks.GetLastSweep(ctx)
}

// NextRun reports when the next tick fires, zero before Start.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
