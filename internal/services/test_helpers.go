package services

import (
	"context"
	"sync"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/iplock"
	"github.com/NujabesCode/itsmycolor-authgate/internal/lockout"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// MockAccountRepository implements AccountRepository and
// AccountAdminRepository for testing.
type MockAccountRepository struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.Account, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.Account, error)
	RecordLoginFailureFunc func(ctx context.Context, accountID string, policy lockout.Policy, now time.Time) (*models.Account, error)
	RecordLoginSuccessFunc func(ctx context.Context, accountID string, now time.Time) error
	ClearLockFunc          func(ctx context.Context, accountID string, now time.Time) error
	CountTotalFunc         func(ctx context.Context) (int64, error)
	CountLockedFunc        func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) RecordLoginFailure(ctx context.Context, accountID string, policy lockout.Policy, now time.Time) (*models.Account, error) {
	if m.RecordLoginFailureFunc != nil {
		return m.RecordLoginFailureFunc(ctx, accountID, policy, now)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) RecordLoginSuccess(ctx context.Context, accountID string, now time.Time) error {
	if m.RecordLoginSuccessFunc != nil {
		return m.RecordLoginSuccessFunc(ctx, accountID, now)
	}
	return nil
}

func (m *MockAccountRepository) ClearLock(ctx context.Context, accountID string, now time.Time) error {
	if m.ClearLockFunc != nil {
		return m.ClearLockFunc(ctx, accountID, now)
	}
	return nil
}

func (m *MockAccountRepository) CountTotal(ctx context.Context) (int64, error) {
	if m.CountTotalFunc != nil {
		return m.CountTotalFunc(ctx)
	}
	return 0, nil
}

func (m *MockAccountRepository) CountLocked(ctx context.Context, now time.Time) (int64, error) {
	if m.CountLockedFunc != nil {
		return m.CountLockedFunc(ctx, now)
	}
	return 0, nil
}

// MockAttemptRecorder implements AttemptRecorder and AttemptStatsRepository
// for testing. Recorded attempts are captured for assertions.
type MockAttemptRecorder struct {
	mu                 sync.Mutex
	Recorded           []*models.LoginAttempt
	RecordAttemptFunc  func(ctx context.Context, attempt *models.LoginAttempt) error
	CountFailedFunc    func(ctx context.Context, since time.Time) (int64, error)
	RecentFailuresFunc func(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
}

func (m *MockAttemptRecorder) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordAttemptFunc != nil {
		return m.RecordAttemptFunc(ctx, attempt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, attempt)
	return nil
}

func (m *MockAttemptRecorder) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	if m.CountFailedFunc != nil {
		return m.CountFailedFunc(ctx, since)
	}
	return 0, nil
}

func (m *MockAttemptRecorder) RecentFailures(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	if m.RecentFailuresFunc != nil {
		return m.RecentFailuresFunc(ctx, limit)
	}
	return []*models.LoginAttempt{}, nil
}

// LastAttempt returns the most recently recorded attempt, or nil.
func (m *MockAttemptRecorder) LastAttempt() *models.LoginAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Recorded) == 0 {
		return nil
	}
	return m.Recorded[len(m.Recorded)-1]
}

// MockBrandRepository implements BrandRepository and BrandStatusReader for
// testing.
type MockBrandRepository struct {
	GetByIDFunc         func(ctx context.Context, id string) (*models.Brand, error)
	CreateFunc          func(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	ListByOwnerFunc     func(ctx context.Context, ownerAccountID string) ([]*models.Brand, error)
	StatusesByOwnerFunc func(ctx context.Context, ownerAccountID string) ([]models.BrandStatus, error)
	UpdateStatusFunc    func(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error
}

func (m *MockBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBrandRepository) Create(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, brand)
	}
	brand.ID = "brand_test"
	brand.CreatedAt = time.Now()
	brand.UpdatedAt = brand.CreatedAt
	return brand, nil
}

func (m *MockBrandRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*models.Brand, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerAccountID)
	}
	return []*models.Brand{}, nil
}

func (m *MockBrandRepository) StatusesByOwner(ctx context.Context, ownerAccountID string) ([]models.BrandStatus, error) {
	if m.StatusesByOwnerFunc != nil {
		return m.StatusesByOwnerFunc(ctx, ownerAccountID)
	}
	return []models.BrandStatus{}, nil
}

func (m *MockBrandRepository) UpdateStatus(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, brandID, from, to, now)
	}
	return nil
}

// MockAuditLogRepository implements AuditLogRepository and AuditLogReader for
// testing and captures created entries.
type MockAuditLogRepository struct {
	mu          sync.Mutex
	CreatedLogs []*models.AuditLog
	CreateFunc  func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)

	GetRecentByEventTypeFunc  func(ctx context.Context, eventType string, limit int) ([]*models.AuditLog, error)
	CountTodayByEventTypeFunc func(ctx context.Context, eventType string) (int64, error)
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedLogs = append(m.CreatedLogs, log)
	return log, nil
}

func (m *MockAuditLogRepository) GetRecentByEventType(ctx context.Context, eventType string, limit int) ([]*models.AuditLog, error) {
	if m.GetRecentByEventTypeFunc != nil {
		return m.GetRecentByEventTypeFunc(ctx, eventType, limit)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditLogRepository) CountTodayByEventType(ctx context.Context, eventType string) (int64, error) {
	if m.CountTodayByEventTypeFunc != nil {
		return m.CountTodayByEventTypeFunc(ctx, eventType)
	}
	return 0, nil
}

// MockEmailService implements EmailService for testing.
type MockEmailService struct {
	mu                        sync.Mutex
	Sent                      []string
	SendBrandReviewNoticeFunc func(ctx context.Context, email, brandName string, status models.BrandStatus) error
}

func (m *MockEmailService) SendBrandReviewNotice(ctx context.Context, email, brandName string, status models.BrandStatus) error {
	if m.SendBrandReviewNoticeFunc != nil {
		return m.SendBrandReviewNoticeFunc(ctx, email, brandName, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return nil
}

// MockIPLockTracker implements IPLockTracker and IPLockAdmin for testing.
// The zero value allows everything and records nothing.
type MockIPLockTracker struct {
	EvaluateFunc        func(address string, now time.Time) iplock.Decision
	RecordFailureFunc   func(address string, now time.Time)
	ClearFunc           func(address string) bool
	ClearAllFunc        func() int
	ActiveLockCountFunc func(now time.Time) int

	mu       sync.Mutex
	Failures []string
}

func (m *MockIPLockTracker) Evaluate(address string, now time.Time) iplock.Decision {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(address, now)
	}
	return iplock.Decision{Allowed: true}
}

func (m *MockIPLockTracker) RecordFailure(address string, now time.Time) {
	if m.RecordFailureFunc != nil {
		m.RecordFailureFunc(address, now)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, address)
}

func (m *MockIPLockTracker) Clear(address string) bool {
	if m.ClearFunc != nil {
		return m.ClearFunc(address)
	}
	return false
}

func (m *MockIPLockTracker) ClearAll() int {
	if m.ClearAllFunc != nil {
		return m.ClearAllFunc()
	}
	return 0
}

func (m *MockIPLockTracker) ActiveLockCount(now time.Time) int {
	if m.ActiveLockCountFunc != nil {
		return m.ActiveLockCountFunc(now)
	}
	return 0
}

// FailureCount returns how many failures were recorded.
func (m *MockIPLockTracker) FailureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Failures)
}

// NewTestAccount builds an active account with sane defaults.
func NewTestAccount(id, email, role string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:        id,
		Email:     email,
		Name:      "Test Account",
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestAccountWithPassword builds an active account carrying a password hash.
func NewTestAccountWithPassword(id, email, role, passwordHash string) *models.Account {
	account := NewTestAccount(id, email, role)
	account.PasswordHash = passwordHash
	return account
}

// NewTestAccountLocked builds an account locked for the next 30 minutes.
func NewTestAccountLocked(id, email, role string) *models.Account {
	account := NewTestAccount(id, email, role)
	lockedUntil := time.Now().Add(30 * time.Minute)
	account.LockedUntil = &lockedUntil
	account.LoginFailureCount = 5
	return account
}

// NewTestBrand builds a brand in the given status.
func NewTestBrand(id, ownerID string, status models.BrandStatus) *models.Brand {
	now := time.Now()
	return &models.Brand{
		ID:             id,
		OwnerAccountID: ownerID,
		Name:           "Test Brand",
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
