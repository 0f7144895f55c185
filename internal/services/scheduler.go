package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/store"
)

// Scheduler runs the full refresh on a fixed interval and prunes old
// backups daily. It is the sole scheduled writer; on-demand runs share
// the same store lock.
type Scheduler struct {
	refresh  *RefreshService
	store    *store.Store
	logger   *logrus.Logger
	cron     *cron.Cron
	interval time.Duration

	mu        sync.Mutex
	wg        sync.WaitGroup
	isRunning bool
	lastRun   *audit.Run
	lastErr   error
}

// NewScheduler creates a scheduler refreshing every interval.
func NewScheduler(refresh *RefreshService, st *store.Store, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		refresh:  refresh,
		store:    st,
		logger:   logger,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start begins scheduled refreshing and kicks off an initial run in
// the background.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	// Backup pruning runs off-peak rather than per-refresh so manual
	// runs between schedules still leave their snapshots around.
	if _, err := s.cron.AddFunc("0 3 * * *", s.pruneBackups); err != nil {
		return fmt.Errorf("failed to schedule backup pruning: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// The initial run is outside cron's job tracking, so Stop waits on
	// it through the WaitGroup.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runScheduled()
	}()

	s.logger.WithField("interval", s.interval.String()).Info("scheduler started")
	return nil
}

// Stop halts scheduling and waits for running jobs, including the
// initial refresh, to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runScheduled() {
	run, err := s.refresh.Run(context.Background(), "scheduled")
	s.mu.Lock()
	s.lastRun, s.lastErr = run, err
	s.mu.Unlock()
	if err != nil {
		s.logger.WithError(err).Error("scheduled refresh failed")
	}
}

func (s *Scheduler) pruneBackups() {
	if err := s.store.PruneBackups(); err != nil {
		s.logger.WithError(err).Error("backup pruning failed")
	}
}

// RunNow triggers an on-demand refresh, used by the API.
func (s *Scheduler) RunNow(ctx context.Context) (*audit.Run, error) {
	run, err := s.refresh.Run(ctx, "api")
	s.mu.Lock()
	s.lastRun, s.lastErr = run, err
	s.mu.Unlock()
	return run, err
}

// Status reports the scheduler state for the status endpoint.
func (s *Scheduler) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	status := map[string]interface{}{
		"is_running": s.isRunning,
		"interval":   s.interval.String(),
		"next_runs":  nextRuns,
		"cron_jobs":  len(entries),
	}
	if s.lastRun != nil {
		status["last_run"] = s.lastRun
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}
