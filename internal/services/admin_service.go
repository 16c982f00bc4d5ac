package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// AccountAdminRepository covers the account operations privileged endpoints
// use.
type AccountAdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	ClearLock(ctx context.Context, accountID string, now time.Time) error
	CountTotal(ctx context.Context) (int64, error)
	CountLocked(ctx context.Context, now time.Time) (int64, error)
}

// AttemptStatsRepository reads the attempt ledger for the dashboard.
type AttemptStatsRepository interface {
	CountFailedSince(ctx context.Context, since time.Time) (int64, error)
	RecentFailures(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
}

// IPLockAdmin is the operator view of the source-address lock table.
type IPLockAdmin interface {
	Clear(address string) bool
	ClearAll() int
	ActiveLockCount(now time.Time) int
}

// AuditLogReader reads the audit trail back for the operator feed.
type AuditLogReader interface {
	GetRecentByEventType(ctx context.Context, eventType string, limit int) ([]*models.AuditLog, error)
	CountTodayByEventType(ctx context.Context, eventType string) (int64, error)
}

// AdminService implements the operator surface: lock clears, the security
// dashboard and the audit feed. Every mutation is attributed to an actor and
// audited.
type AdminService struct {
	accounts AccountAdminRepository
	attempts AttemptStatsRepository
	ipLocks  IPLockAdmin
	auditLog AuditLogReader
	audit    *AuditService
	logger   *slog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(accounts AccountAdminRepository, attempts AttemptStatsRepository, ipLocks IPLockAdmin, auditLog AuditLogReader, audit *AuditService, logger *slog.Logger) *AdminService {
	return &AdminService{
		accounts: accounts,
		attempts: attempts,
		ipLocks:  ipLocks,
		auditLog: auditLog,
		audit:    audit,
		logger:   logger,
	}
}

// ClearAccountLock removes an account's lock and resets its failure counter,
// the same reset a successful login performs.
func (s *AdminService) ClearAccountLock(ctx context.Context, actorID, accountID string) error {
	if err := s.accounts.ClearLock(ctx, accountID, time.Now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to clear account lock",
			slog.String("account_id", accountID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("account lock cleared",
		slog.String("account_id", accountID),
		slog.String("actor_id", actorID))
	s.audit.RecordAdminAction(ctx, models.AuditEventTypeAccountUnlock, actorID,
		models.AuditResourceTypeAccount, accountID, "clear_lock", nil)

	return nil
}

// ClearIPLock removes the lock record for one source address. Clearing an
// address that has no record is not an error; the end state is the same.
func (s *AdminService) ClearIPLock(ctx context.Context, actorID, address string) error {
	if address == "" {
		return models.ErrBadRequest
	}

	found := s.ipLocks.Clear(address)

	s.logger.Info("ip lock cleared",
		slog.String("address", address),
		slog.Bool("existed", found),
		slog.String("actor_id", actorID))
	s.audit.RecordAdminAction(ctx, models.AuditEventTypeIPLockClear, actorID,
		models.AuditResourceTypeIPLock, address, "clear",
		models.AuditMetadata{"existed": found})

	return nil
}

// ClearAllIPLocks drops every source-address lock record and returns how many
// were removed. This disables a live control for all origins at once, so it is
// a separate, explicitly bulk operation rather than a default.
func (s *AdminService) ClearAllIPLocks(ctx context.Context, actorID string) int {
	removed := s.ipLocks.ClearAll()

	s.logger.Warn("all ip locks cleared",
		slog.Int("removed", removed),
		slog.String("actor_id", actorID))
	s.audit.RecordAdminAction(ctx, models.AuditEventTypeIPLockClear, actorID,
		models.AuditResourceTypeIPLock, "*", "clear_all",
		models.AuditMetadata{"removed": removed})

	return removed
}

// SecurityStats is the dashboard snapshot.
type SecurityStats struct {
	TotalAccounts     int64                  `json:"total_accounts"`
	LockedAccounts    int64                  `json:"locked_accounts"`
	ActiveIPLocks     int                    `json:"active_ip_locks"`
	FailedAttempts24h int64                  `json:"failed_attempts_24h"`
	RecentFailures    []*models.LoginAttempt `json:"recent_failures"`
}

// AuditFeed is one page of the operator audit trail for a single event type.
type AuditFeed struct {
	EventType  string             `json:"event_type"`
	TodayCount int64              `json:"today_count"`
	Entries    []*models.AuditLog `json:"entries"`
}

// GetAuditFeed returns the newest audit entries of one event type plus how
// many were recorded today. Unknown event types are rejected before any query
// runs.
func (s *AdminService) GetAuditFeed(ctx context.Context, eventType string, limit int) (*AuditFeed, error) {
	if !models.ValidAuditEventType(eventType) {
		return nil, models.ErrBadRequest
	}

	entries, err := s.auditLog.GetRecentByEventType(ctx, eventType, limit)
	if err != nil {
		s.logger.Error("failed to load audit entries",
			slog.String("event_type", eventType), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	today, err := s.auditLog.CountTodayByEventType(ctx, eventType)
	if err != nil {
		s.logger.Error("failed to count audit entries",
			slog.String("event_type", eventType), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuditFeed{
		EventType:  eventType,
		TodayCount: today,
		Entries:    entries,
	}, nil
}

// GetSecurityStats assembles the operator dashboard snapshot.
func (s *AdminService) GetSecurityStats(ctx context.Context) (*SecurityStats, error) {
	now := time.Now()

	total, err := s.accounts.CountTotal(ctx)
	if err != nil {
		s.logger.Error("failed to count accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	locked, err := s.accounts.CountLocked(ctx, now)
	if err != nil {
		s.logger.Error("failed to count locked accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	failed, err := s.attempts.CountFailedSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		s.logger.Error("failed to count failed attempts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	recent, err := s.attempts.RecentFailures(ctx, 20)
	if err != nil {
		s.logger.Error("failed to load recent failures", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &SecurityStats{
		TotalAccounts:     total,
		LockedAccounts:    locked,
		ActiveIPLocks:     s.ipLocks.ActiveLockCount(now),
		FailedAttempts24h: failed,
		RecentFailures:    recent,
	}, nil
}
