package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ExpiredAttemptPruner deletes login history rows whose expiry has passed.
// Satisfied by *repositories.LoginAttemptRepository.
type ExpiredAttemptPruner interface {
	DeleteExpiredAttempts(ctx context.Context, now time.Time) (int64, error)
}

// CleanupManager periodically prunes expired login history
type CleanupManager struct {
	pruner   ExpiredAttemptPruner
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCleanupManager(pruner ExpiredAttemptPruner, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		pruner:   pruner,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// done or Stop is called.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.pruner.DeleteExpiredAttempts(cleanupCtx, cm.now())
	if err != nil {
		cm.logger.Error("failed to prune login history", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("login history pruned", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
