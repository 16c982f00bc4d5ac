package handlers

import (
	"context"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing.
type MockAuthService struct {
	LoginFunc func(ctx context.Context, email, password, sourceAddress string) (*services.LoginResult, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, sourceAddress string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, sourceAddress)
	}
	return nil, models.ErrInvalidCredential
}

// MockBrandService implements BrandServiceInterface for testing.
type MockBrandService struct {
	SubmitFunc   func(ctx context.Context, owner *models.Account, name string) (*models.Brand, error)
	ResubmitFunc func(ctx context.Context, owner *models.Account, brandID string) (*models.Brand, error)
	ListOwnFunc  func(ctx context.Context, ownerAccountID string) ([]*models.Brand, error)
}

func (m *MockBrandService) Submit(ctx context.Context, owner *models.Account, name string) (*models.Brand, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, owner, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBrandService) Resubmit(ctx context.Context, owner *models.Account, brandID string) (*models.Brand, error) {
	if m.ResubmitFunc != nil {
		return m.ResubmitFunc(ctx, owner, brandID)
	}
	return nil, models.ErrNotFound
}

func (m *MockBrandService) ListOwn(ctx context.Context, ownerAccountID string) ([]*models.Brand, error) {
	if m.ListOwnFunc != nil {
		return m.ListOwnFunc(ctx, ownerAccountID)
	}
	return []*models.Brand{}, nil
}

// MockBrandAccessService implements BrandAccessServiceInterface for testing.
type MockBrandAccessService struct {
	CanAccessFunc func(ctx context.Context, account *models.Account) (services.AccessDecision, error)
}

func (m *MockBrandAccessService) CanAccessSellerConsole(ctx context.Context, account *models.Account) (services.AccessDecision, error) {
	if m.CanAccessFunc != nil {
		return m.CanAccessFunc(ctx, account)
	}
	return services.AccessDecision{Allowed: false}, nil
}

// MockAdminService implements AdminServiceInterface for testing.
type MockAdminService struct {
	ClearAccountLockFunc func(ctx context.Context, actorID, accountID string) error
	ClearIPLockFunc      func(ctx context.Context, actorID, address string) error
	ClearAllIPLocksFunc  func(ctx context.Context, actorID string) int
	GetAuditFeedFunc     func(ctx context.Context, eventType string, limit int) (*services.AuditFeed, error)
	GetSecurityStatsFunc func(ctx context.Context) (*services.SecurityStats, error)
}

func (m *MockAdminService) ClearAccountLock(ctx context.Context, actorID, accountID string) error {
	if m.ClearAccountLockFunc != nil {
		return m.ClearAccountLockFunc(ctx, actorID, accountID)
	}
	return nil
}

func (m *MockAdminService) ClearIPLock(ctx context.Context, actorID, address string) error {
	if m.ClearIPLockFunc != nil {
		return m.ClearIPLockFunc(ctx, actorID, address)
	}
	return nil
}

func (m *MockAdminService) ClearAllIPLocks(ctx context.Context, actorID string) int {
	if m.ClearAllIPLocksFunc != nil {
		return m.ClearAllIPLocksFunc(ctx, actorID)
	}
	return 0
}

func (m *MockAdminService) GetAuditFeed(ctx context.Context, eventType string, limit int) (*services.AuditFeed, error) {
	if m.GetAuditFeedFunc != nil {
		return m.GetAuditFeedFunc(ctx, eventType, limit)
	}
	return &services.AuditFeed{EventType: eventType}, nil
}

func (m *MockAdminService) GetSecurityStats(ctx context.Context) (*services.SecurityStats, error) {
	if m.GetSecurityStatsFunc != nil {
		return m.GetSecurityStatsFunc(ctx)
	}
	return &services.SecurityStats{}, nil
}

// MockBrandReviewService implements BrandReviewInterface for testing.
type MockBrandReviewService struct {
	SetStatusFunc func(ctx context.Context, actorID, brandID string, target models.BrandStatus) (*models.Brand, error)
}

func (m *MockBrandReviewService) SetStatus(ctx context.Context, actorID, brandID string, target models.BrandStatus) (*models.Brand, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, actorID, brandID, target)
	}
	return nil, models.ErrNotFound
}
