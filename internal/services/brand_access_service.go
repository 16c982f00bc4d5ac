package services

import (
	"context"
	"log/slog"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// Denial reasons for the seller-console authorization gate. A denied decision
// carries every reason that applies, not just the first, so the console can
// tell the seller exactly what is missing.
type DenialReason string

const (
	DenialRoleMismatch    DenialReason = "role_mismatch"
	DenialNoBrand         DenialReason = "no_brand"
	DenialNoApprovedBrand DenialReason = "no_approved_brand"
)

// AccessDecision is the outcome of the seller-console gate.
type AccessDecision struct {
	Allowed bool           `json:"allowed"`
	Reasons []DenialReason `json:"reasons,omitempty"`
}

// DecideSellerAccess is the pure gate decision: the caller must hold the
// brand-manager role and own at least one approved brand. Brand status is only
// read here, never changed.
func DecideSellerAccess(role string, statuses []models.BrandStatus) AccessDecision {
	var reasons []DenialReason

	if role != models.RoleBrandManager {
		reasons = append(reasons, DenialRoleMismatch)
	}

	if len(statuses) == 0 {
		reasons = append(reasons, DenialNoBrand)
	} else {
		approved := false
		for _, status := range statuses {
			if status == models.BrandStatusApproved {
				approved = true
				break
			}
		}
		if !approved {
			reasons = append(reasons, DenialNoApprovedBrand)
		}
	}

	return AccessDecision{Allowed: len(reasons) == 0, Reasons: reasons}
}

// BrandStatusReader is the single query the gate needs from brand storage.
type BrandStatusReader interface {
	StatusesByOwner(ctx context.Context, ownerAccountID string) ([]models.BrandStatus, error)
}

// BrandAccessService answers "may this account use the seller console".
type BrandAccessService struct {
	brands BrandStatusReader
	logger *slog.Logger
}

// NewBrandAccessService creates a new BrandAccessService.
func NewBrandAccessService(brands BrandStatusReader, logger *slog.Logger) *BrandAccessService {
	return &BrandAccessService{brands: brands, logger: logger}
}

// CanAccessSellerConsole evaluates the gate for one account. The brand lookup
// runs even when the role already fails, so the decision lists every missing
// condition at once.
func (s *BrandAccessService) CanAccessSellerConsole(ctx context.Context, account *models.Account) (AccessDecision, error) {
	statuses, err := s.brands.StatusesByOwner(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to load brand statuses",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return AccessDecision{}, models.ErrInternalServer
	}

	decision := DecideSellerAccess(account.Role, statuses)
	if !decision.Allowed {
		s.logger.Info("seller console access denied",
			slog.String("account_id", account.ID),
			slog.Any("reasons", decision.Reasons))
	}

	return decision, nil
}
