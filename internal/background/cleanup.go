package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/iplock"
)

// AttemptPurger removes expired entries from the login attempt ledger.
type AttemptPurger interface {
	DeleteExpiredAttempts(ctx context.Context) (int64, error)
}

// AuditPurger removes audit entries past their retention window.
type AuditPurger interface {
	Cleanup(ctx context.Context, olderThan time.Time) (int64, error)
}

// auditRetention is how long audit entries are kept.
const auditRetention = 90 * 24 * time.Hour

// CleanupManager periodically purges expired login attempts and audit
// entries, and sweeps dead records out of the in-process address lock table
// so it does not grow without bound under a slow drip of failures.
type CleanupManager struct {
	attempts AttemptPurger
	audits   AuditPurger
	ipLocks  *iplock.Tracker
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager.
func NewCleanupManager(attempts AttemptPurger, audits AuditPurger, ipLocks *iplock.Tracker, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		attempts: attempts,
		audits:   audits,
		ipLocks:  ipLocks,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
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

	attemptsDeleted, err := cm.attempts.DeleteExpiredAttempts(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to purge expired login attempts", slog.Any("error", err))
	} else if attemptsDeleted > 0 {
		cm.logger.Info("purged expired login attempts", slog.Int64("rows_deleted", attemptsDeleted))
	}

	auditsDeleted, err := cm.audits.Cleanup(cleanupCtx, time.Now().Add(-auditRetention))
	if err != nil {
		cm.logger.Error("failed to purge old audit entries", slog.Any("error", err))
	} else if auditsDeleted > 0 {
		cm.logger.Info("purged old audit entries", slog.Int64("rows_deleted", auditsDeleted))
	}

	if evicted := cm.ipLocks.Sweep(time.Now()); evicted > 0 {
		cm.logger.Info("swept expired address lock entries", slog.Int("evicted", evicted))
	}
}

// Stop signals the cleanup manager to stop.
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
