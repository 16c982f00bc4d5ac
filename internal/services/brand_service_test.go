package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	pkglogger "github.com/NujabesCode/itsmycolor-authgate/pkg/logger"
)

func newBrandService(brands *MockBrandRepository, accounts *MockAccountRepository, email *MockEmailService) (*BrandService, *MockAuditLogRepository) {
	logger := newTestLogger()
	auditRepo := &MockAuditLogRepository{}
	audit := NewAuditService(auditRepo, logger, pkglogger.NewAuditLogger(logger))
	return NewBrandService(brands, accounts, email, audit, logger), auditRepo
}

func TestSubmit_RequiresBrandManagerRole(t *testing.T) {
	svc, _ := newBrandService(&MockBrandRepository{}, &MockAccountRepository{}, &MockEmailService{})

	for _, role := range []string{models.RoleUser, models.RoleAdmin} {
		_, err := svc.Submit(context.Background(), NewTestAccount("acct_1", "u@example.com", role), "My Brand")
		require.ErrorIs(t, err, models.ErrForbidden, "role %s", role)
	}
}

func TestSubmit_CreatesPendingReviewBrand(t *testing.T) {
	var created *models.Brand
	brands := &MockBrandRepository{
		CreateFunc: func(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
			created = brand
			brand.ID = "brand_1"
			return brand, nil
		},
	}
	svc, auditRepo := newBrandService(brands, &MockAccountRepository{}, &MockEmailService{})

	owner := NewTestAccount("acct_1", "seller@example.com", models.RoleBrandManager)
	brand, err := svc.Submit(context.Background(), owner, "  My Brand  ")
	require.NoError(t, err)

	assert.Equal(t, models.BrandStatusPendingReview, created.Status)
	assert.Equal(t, "My Brand", brand.Name)
	assert.Equal(t, "acct_1", brand.OwnerAccountID)
	require.Len(t, auditRepo.CreatedLogs, 1)
	assert.Equal(t, models.AuditEventTypeBrandSubmit, auditRepo.CreatedLogs[0].EventType)
}

func TestSubmit_EmptyNameRejected(t *testing.T) {
	svc, _ := newBrandService(&MockBrandRepository{}, &MockAccountRepository{}, &MockEmailService{})

	owner := NewTestAccount("acct_1", "seller@example.com", models.RoleBrandManager)
	_, err := svc.Submit(context.Background(), owner, "   ")
	require.ErrorIs(t, err, models.ErrBadRequest)
}

func TestSetStatus_LegalTransitionAppliesAndNotifies(t *testing.T) {
	brand := NewTestBrand("brand_1", "acct_1", models.BrandStatusPendingReview)
	brands := &MockBrandRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
			return brand, nil
		},
	}
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return NewTestAccount("acct_1", "owner@example.com", models.RoleBrandManager), nil
		},
	}
	email := &MockEmailService{}
	svc, auditRepo := newBrandService(brands, accounts, email)

	updated, err := svc.SetStatus(context.Background(), "admin_1", "brand_1", models.BrandStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.BrandStatusApproved, updated.Status)
	assert.Equal(t, []string{"owner@example.com"}, email.Sent)

	require.Len(t, auditRepo.CreatedLogs, 1)
	entry := auditRepo.CreatedLogs[0]
	assert.Equal(t, models.AuditEventTypeBrandReview, entry.EventType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "admin_1", *entry.ActorID)
}

func TestSetStatus_IllegalTransitionsRejected(t *testing.T) {
	cases := []struct {
		from   models.BrandStatus
		target models.BrandStatus
	}{
		{models.BrandStatusApproved, models.BrandStatusRejected},
		{models.BrandStatusApproved, models.BrandStatusPendingReview},
		{models.BrandStatusPendingReview, models.BrandStatusResubmissionRequested},
		{models.BrandStatusRejected, models.BrandStatusApproved},
		{models.BrandStatusResubmissionRequested, models.BrandStatusApproved},
	}

	for _, tc := range cases {
		brand := NewTestBrand("brand_1", "acct_1", tc.from)
		brands := &MockBrandRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
				return brand, nil
			},
			UpdateStatusFunc: func(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error {
				t.Fatalf("illegal transition %s -> %s must not reach storage", from, to)
				return nil
			},
		}
		svc, _ := newBrandService(brands, &MockAccountRepository{}, &MockEmailService{})

		_, err := svc.SetStatus(context.Background(), "admin_1", "brand_1", tc.target)
		require.ErrorIs(t, err, models.ErrInvalidTransition, "%s -> %s", tc.from, tc.target)
	}
}

func TestSetStatus_LostRaceSurfacesConflict(t *testing.T) {
	brand := NewTestBrand("brand_1", "acct_1", models.BrandStatusPendingReview)
	brands := &MockBrandRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
			return brand, nil
		},
		UpdateStatusFunc: func(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error {
			return models.ErrConflict
		},
	}
	svc, _ := newBrandService(brands, &MockAccountRepository{}, &MockEmailService{})

	_, err := svc.SetStatus(context.Background(), "admin_1", "brand_1", models.BrandStatusApproved)
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestSetStatus_RejectionNotifiesOwner(t *testing.T) {
	brand := NewTestBrand("brand_1", "acct_1", models.BrandStatusPendingReview)
	brands := &MockBrandRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
			return brand, nil
		},
	}
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return NewTestAccount("acct_1", "owner@example.com", models.RoleBrandManager), nil
		},
	}
	email := &MockEmailService{}
	svc, _ := newBrandService(brands, accounts, email)

	_, err := svc.SetStatus(context.Background(), "admin_1", "brand_1", models.BrandStatusRejected)
	require.NoError(t, err)
	assert.Len(t, email.Sent, 1)
}

func TestResubmit_OwnerMismatchReadsAsNotFound(t *testing.T) {
	brand := NewTestBrand("brand_1", "someone_else", models.BrandStatusResubmissionRequested)
	brands := &MockBrandRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
			return brand, nil
		},
	}
	svc, _ := newBrandService(brands, &MockAccountRepository{}, &MockEmailService{})

	owner := NewTestAccount("acct_1", "seller@example.com", models.RoleBrandManager)
	_, err := svc.Resubmit(context.Background(), owner, "brand_1")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestResubmit_OnlyFromResubmissionRequested(t *testing.T) {
	for _, from := range []models.BrandStatus{
		models.BrandStatusPendingReview,
		models.BrandStatusApproved,
		models.BrandStatusRejected,
	} {
		brand := NewTestBrand("brand_1", "acct_1", from)
		brands := &MockBrandRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
				return brand, nil
			},
		}
		svc, _ := newBrandService(brands, &MockAccountRepository{}, &MockEmailService{})

		owner := NewTestAccount("acct_1", "seller@example.com", models.RoleBrandManager)
		_, err := svc.Resubmit(context.Background(), owner, "brand_1")
		require.ErrorIs(t, err, models.ErrInvalidTransition, "from %s", from)
	}
}

func TestResubmit_ReentersReview(t *testing.T) {
	brand := NewTestBrand("brand_1", "acct_1", models.BrandStatusResubmissionRequested)
	var movedTo models.BrandStatus
	brands := &MockBrandRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Brand, error) {
			return brand, nil
		},
		UpdateStatusFunc: func(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error {
			assert.Equal(t, models.BrandStatusResubmissionRequested, from)
			movedTo = to
			return nil
		},
	}
	svc, _ := newBrandService(brands, &MockAccountRepository{}, &MockEmailService{})

	owner := NewTestAccount("acct_1", "seller@example.com", models.RoleBrandManager)
	updated, err := svc.Resubmit(context.Background(), owner, "brand_1")
	require.NoError(t, err)
	assert.Equal(t, models.BrandStatusPendingReview, movedTo)
	assert.Equal(t, models.BrandStatusPendingReview, updated.Status)
}
