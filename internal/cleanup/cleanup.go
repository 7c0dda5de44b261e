// Package cleanup runs scheduled housekeeping on the SQLite database.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs housekeeping every night at 03:00
const DefaultSchedule = "0 3 * * *"

// Store is the part of the database the cleanup steps need
type Store interface {
	QuickCheck() error
	Optimize() error
	Vacuum() error
}

// CleanupResult represents the result of a cleanup step
type CleanupResult struct {
	Step     string        `json:"step"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// CleanupOperation represents a single cleanup step
type CleanupOperation struct {
	Name     string
	Executor func() error
	// Critical steps stop the run when they fail
	Critical bool
}

// CleanupManager schedules and runs the housekeeping steps
type CleanupManager struct {
	store  Store
	cron   *cron.Cron
	logger *slog.Logger

	// runMu serializes runs; mu only guards the stored results
	runMu   sync.Mutex
	mu      sync.Mutex
	lastRun time.Time
	results []CleanupResult
}

// NewCleanupManager creates a manager for store. Call Start to schedule it.
func NewCleanupManager(store Store, logger *slog.Logger) *CleanupManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupManager{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger}))),
	}
}

// Start schedules Run on a standard five-field cron expression
func (cm *CleanupManager) Start(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	if _, err := cm.cron.AddFunc(schedule, func() {
		if _, err := cm.Run(); err != nil {
			cm.logger.Error("scheduled cleanup failed", "error", err)
		}
	}); err != nil {
		return err
	}
	cm.cron.Start()
	cm.logger.Info("database cleanup scheduled", "schedule", schedule)
	return nil
}

// Stop stops the scheduler and waits for a running cleanup to finish
func (cm *CleanupManager) Stop(ctx context.Context) {
	done := cm.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		cm.logger.Warn("cleanup still running at shutdown")
	}
}

// Run executes every step once, in order
func (cm *CleanupManager) Run() ([]CleanupResult, error) {
	cm.runMu.Lock()
	defer cm.runMu.Unlock()

	operations := []CleanupOperation{
		{Name: "Check database integrity", Executor: cm.store.QuickCheck, Critical: true},
		{Name: "Refresh query planner statistics", Executor: cm.store.Optimize},
		{Name: "Reclaim free pages", Executor: cm.store.Vacuum},
	}

	start := time.Now()
	results := make([]CleanupResult, 0, len(operations))
	var lastError error
	for _, operation := range operations {
		stepStart := time.Now()
		err := operation.Executor()
		result := CleanupResult{
			Step:     operation.Name,
			Success:  err == nil,
			Duration: time.Since(stepStart),
		}
		if err != nil {
			result.Error = err.Error()
			lastError = err
			cm.logger.Error("cleanup step failed", "step", operation.Name, "error", err, "duration", result.Duration)
		}
		results = append(results, result)

		if err != nil && operation.Critical {
			break
		}
	}

	cm.mu.Lock()
	cm.lastRun = start
	cm.results = results
	cm.mu.Unlock()

	successCount, failedCount := summarize(results)
	cm.logger.Info("database cleanup completed",
		"steps", len(results),
		"successSteps", successCount,
		"failedSteps", failedCount,
		"totalDuration", time.Since(start),
	)

	if lastError != nil {
		return results, fmt.Errorf("cleanup completed with errors: %w", lastError)
	}
	return results, nil
}

// GetResults returns the results of the last run and when it started
func (cm *CleanupManager) GetResults() ([]CleanupResult, time.Time) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.results, cm.lastRun
}

func summarize(results []CleanupResult) (int, int) {
	successCount := 0
	for _, result := range results {
		if result.Success {
			successCount++
		}
	}
	return successCount, len(results) - successCount
}

// cronLogger routes robfig/cron's logging to slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
