package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// BrandRepository defines the brand storage operations.
type BrandRepository interface {
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	ListByOwner(ctx context.Context, ownerAccountID string) ([]*models.Brand, error)
	StatusesByOwner(ctx context.Context, ownerAccountID string) ([]models.BrandStatus, error)
	UpdateStatus(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error
}

// BrandService owns brand submission and the review state machine. Status
// moves only along the legal transitions; everything else is rejected with
// ErrInvalidTransition regardless of who asks.
type BrandService struct {
	brands   BrandRepository
	accounts AccountRepository
	email    EmailService
	audit    *AuditService
	logger   *slog.Logger
}

// NewBrandService creates a new BrandService.
func NewBrandService(brands BrandRepository, accounts AccountRepository, email EmailService, audit *AuditService, logger *slog.Logger) *BrandService {
	return &BrandService{
		brands:   brands,
		accounts: accounts,
		email:    email,
		audit:    audit,
		logger:   logger,
	}
}

// Submit registers a new brand for review. Only brand managers can submit;
// the brand starts in pending review.
func (s *BrandService) Submit(ctx context.Context, owner *models.Account, name string) (*models.Brand, error) {
	if owner.Role != models.RoleBrandManager {
		return nil, models.ErrForbidden
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("brand name is required: %w", models.ErrBadRequest)
	}

	brand, err := s.brands.Create(ctx, &models.Brand{
		OwnerAccountID: owner.ID,
		Name:           name,
		Status:         models.BrandStatusPendingReview,
	})
	if err != nil {
		s.logger.Error("failed to create brand", slog.Any("error", err))
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, models.ErrInternalServer
	}

	s.logger.Info("brand submitted",
		slog.String("brand_id", brand.ID),
		slog.String("owner_id", owner.ID))
	s.audit.RecordAdminAction(ctx, models.AuditEventTypeBrandSubmit, owner.ID,
		models.AuditResourceTypeBrand, brand.ID, "submit",
		models.AuditMetadata{"name": brand.Name})

	return brand, nil
}

// ListOwn returns the caller's brands, newest first.
func (s *BrandService) ListOwn(ctx context.Context, ownerAccountID string) ([]*models.Brand, error) {
	brands, err := s.brands.ListByOwner(ctx, ownerAccountID)
	if err != nil {
		s.logger.Error("failed to list brands",
			slog.String("owner_id", ownerAccountID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return brands, nil
}

// Resubmit moves an owner's brand from resubmission-requested back into
// pending review. Brands not owned by the caller are reported as not found so
// brand IDs cannot be probed.
func (s *BrandService) Resubmit(ctx context.Context, owner *models.Account, brandID string) (*models.Brand, error) {
	brand, err := s.brands.GetByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get brand", slog.String("brand_id", brandID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if brand.OwnerAccountID != owner.ID {
		return nil, models.ErrNotFound
	}

	if !brand.Status.CanTransitionTo(models.BrandStatusPendingReview) {
		return nil, fmt.Errorf("cannot resubmit from %s: %w", brand.Status, models.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.brands.UpdateStatus(ctx, brand.ID, brand.Status, models.BrandStatusPendingReview, now); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update brand status",
			slog.String("brand_id", brand.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	brand.Status = models.BrandStatusPendingReview
	brand.UpdatedAt = now

	s.logger.Info("brand resubmitted",
		slog.String("brand_id", brand.ID),
		slog.String("owner_id", owner.ID))
	s.audit.RecordAdminAction(ctx, models.AuditEventTypeBrandSubmit, owner.ID,
		models.AuditResourceTypeBrand, brand.ID, "resubmit",
		models.AuditMetadata{"name": brand.Name})

	return brand, nil
}

// SetStatus applies an administrator's review decision. The target status must
// already be parsed; illegal transitions fail with ErrInvalidTransition and a
// lost compare-and-set race surfaces as ErrConflict so the operator re-reads.
// Approval and rejection trigger a best-effort notice to the owner.
func (s *BrandService) SetStatus(ctx context.Context, actorID, brandID string, target models.BrandStatus) (*models.Brand, error) {
	brand, err := s.brands.GetByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get brand", slog.String("brand_id", brandID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !brand.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%s -> %s: %w", brand.Status, target, models.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.brands.UpdateStatus(ctx, brand.ID, brand.Status, target, now); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update brand status",
			slog.String("brand_id", brand.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	previous := brand.Status
	brand.Status = target
	brand.UpdatedAt = now

	s.logger.Info("brand review decision applied",
		slog.String("brand_id", brand.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(target)),
		slog.String("actor_id", actorID))
	s.audit.RecordAdminAction(ctx, models.AuditEventTypeBrandReview, actorID,
		models.AuditResourceTypeBrand, brand.ID, "set_status",
		models.AuditMetadata{"from": string(previous), "to": string(target)})

	if target == models.BrandStatusApproved || target == models.BrandStatusRejected {
		s.notifyOwner(ctx, brand)
	}

	return brand, nil
}

func (s *BrandService) notifyOwner(ctx context.Context, brand *models.Brand) {
	owner, err := s.accounts.GetByID(ctx, brand.OwnerAccountID)
	if err != nil {
		s.logger.Error("failed to load brand owner for notice",
			slog.String("brand_id", brand.ID), slog.Any("error", err))
		return
	}

	if err := s.email.SendBrandReviewNotice(ctx, owner.Email, brand.Name, brand.Status); err != nil {
		s.logger.Error("failed to send brand review notice",
			slog.String("brand_id", brand.ID), slog.Any("error", err))
	}
}
