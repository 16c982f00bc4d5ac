package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/iplock"
	"github.com/NujabesCode/itsmycolor-authgate/internal/lockout"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	pkgauth "github.com/NujabesCode/itsmycolor-authgate/pkg/auth"
	pkglogger "github.com/NujabesCode/itsmycolor-authgate/pkg/logger"
)

// attemptRetention controls how long ledger entries are kept before the
// cleanup task purges them.
const attemptRetention = 30 * 24 * time.Hour

// AccountRepository defines the account operations the gate needs.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	RecordLoginFailure(ctx context.Context, accountID string, policy lockout.Policy, now time.Time) (*models.Account, error)
	RecordLoginSuccess(ctx context.Context, accountID string, now time.Time) error
}

// AttemptRecorder appends attempt outcomes to the forensic ledger. Ledger
// writes are best-effort: a failed write never changes the login outcome.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
}

// IPLockTracker is the per-source-address throttle consulted before any
// account work happens.
type IPLockTracker interface {
	Evaluate(address string, now time.Time) iplock.Decision
	RecordFailure(address string, now time.Time)
}

// AuthService is the authentication gate. Every login attempt runs the same
// check order: source-address lock, account lookup, account lock, credential
// verify, active flag. The ordering is load-bearing: address throttling costs
// nothing and runs first, the active flag is checked only after the password
// verified so a disabled account answers exactly like a wrong password.
type AuthService struct {
	accounts      AccountRepository
	attempts      AttemptRecorder
	ipLocks       IPLockTracker
	lockoutPolicy lockout.Policy
	logger        *slog.Logger
	auditLogger   *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts AccountRepository, attempts AttemptRecorder, ipLocks IPLockTracker, lockoutPolicy lockout.Policy, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		accounts:      accounts,
		attempts:      attempts,
		ipLocks:       ipLocks,
		lockoutPolicy: lockoutPolicy,
		logger:        logger,
		auditLogger:   auditLogger,
	}
}

// LoginResult is what a successful pass through the gate yields. Session and
// token issuance live outside this service.
type LoginResult struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

// Login runs one authentication attempt through the gate.
//
// Rejections map to sentinels: ErrBadRequest for malformed input (no state is
// touched), LockedError wrapping ErrIPLocked or ErrAccountLocked for lock
// refusals, ErrInvalidCredential for unknown email or wrong password (the two
// are indistinguishable to the caller), ErrNoPasswordSet and
// ErrAccountInactive for account-state refusals that must not move failure
// counters.
func (s *AuthService) Login(ctx context.Context, email, password, sourceAddress string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrBadRequest
	}
	if sourceAddress == "" {
		sourceAddress = "unknown"
	}

	now := time.Now()

	// Address throttle first: it needs no account lookup and shields the
	// rest of the pipeline from sweeps across many accounts.
	if decision := s.ipLocks.Evaluate(sourceAddress, now); !decision.Allowed {
		s.recordAttempt(ctx, email, sourceAddress, now, false, "ip_locked")
		s.auditFailure(email, "", sourceAddress, "ip_locked")
		return nil, models.NewIPLockedError(decision.LockedUntil)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Unknown emails still count against the source address,
			// otherwise enumeration sweeps would never trip the throttle.
			s.ipLocks.RecordFailure(sourceAddress, now)
			s.recordAttempt(ctx, email, sourceAddress, now, false, "invalid_credentials")
			s.logger.Info("login failed: invalid credentials")
			s.auditFailure(email, "", sourceAddress, "invalid_credentials")
			return nil, models.ErrInvalidCredential
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if decision := lockout.Evaluate(account, now); !decision.Allowed {
		s.recordAttempt(ctx, email, sourceAddress, now, false, "account_locked")
		s.logger.Info("login blocked: account locked",
			slog.String("account_id", account.ID),
			slog.Time("locked_until", decision.LockedUntil))
		s.auditFailure(email, account.ID, sourceAddress, "account_locked")
		return nil, models.NewAccountLockedError(decision.LockedUntil)
	}

	// No password on file means login is impossible, not wrong. The counter
	// stays put: nothing here indicates a guessing attack.
	if account.PasswordHash == "" {
		s.recordAttempt(ctx, email, sourceAddress, now, false, "no_password_set")
		s.logger.Info("login blocked: no password set", slog.String("account_id", account.ID))
		s.auditFailure(email, account.ID, sourceAddress, "no_password_set")
		return nil, models.ErrNoPasswordSet
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		if _, err := s.accounts.RecordLoginFailure(ctx, account.ID, s.lockoutPolicy, now); err != nil {
			s.logger.Error("failed to record login failure",
				slog.String("account_id", account.ID), slog.Any("error", err))
		}
		s.ipLocks.RecordFailure(sourceAddress, now)
		s.recordAttempt(ctx, email, sourceAddress, now, false, "invalid_credentials")
		s.logger.Info("login failed: invalid credentials")
		s.auditFailure(email, account.ID, sourceAddress, "invalid_credentials")
		return nil, models.ErrInvalidCredential
	}

	// Checked after the verify: an attacker probing a deactivated account
	// learns nothing they would not learn from a wrong password.
	if !account.IsActive {
		s.recordAttempt(ctx, email, sourceAddress, now, false, "account_inactive")
		s.logger.Info("login blocked: account inactive", slog.String("account_id", account.ID))
		s.auditFailure(email, account.ID, sourceAddress, "account_inactive")
		return nil, models.ErrAccountInactive
	}

	if err := s.accounts.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		s.logger.Error("failed to record login success",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.recordAttempt(ctx, email, sourceAddress, now, true, "")
	s.logger.Info("login succeeded", slog.String("account_id", account.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_success",
		AccountID:     account.ID,
		SourceAddress: sourceAddress,
		Success:       true,
	})

	return &LoginResult{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
	}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, email, sourceAddress string, now time.Time, success bool, failureReason string) {
	attempt := &models.LoginAttempt{
		Email:         email,
		SourceAddress: sourceAddress,
		AttemptTime:   now,
		Success:       success,
		ExpiresAt:     now.Add(attemptRetention),
	}
	if failureReason != "" {
		attempt.FailureReason = &failureReason
	}

	if err := s.attempts.RecordAttempt(ctx, attempt); err != nil {
		s.logger.Error("failed to record login attempt", slog.Any("error", err))
	}
}

func (s *AuthService) auditFailure(email, accountID, sourceAddress, reason string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		AccountID:     accountID,
		SourceAddress: sourceAddress,
		Success:       false,
		FailureReason: reason,
		Metadata:      map[string]string{"email": pkglogger.SanitizedEmail(email)},
	})
}
