package models

import (
	"fmt"
	"time"
)

// BrandStatus is the closed enumeration of brand review states. Values coming
// from storage or transport must go through ParseBrandStatus; the review state
// machine is only correct over this set.
type BrandStatus string

const (
	BrandStatusPendingReview         BrandStatus = "pending_review"
	BrandStatusApproved              BrandStatus = "approved"
	BrandStatusRejected              BrandStatus = "rejected"
	BrandStatusResubmissionRequested BrandStatus = "resubmission_requested"
)

// ParseBrandStatus validates a raw status value at the boundary.
// Unknown or differently-cased values are rejected, never coerced.
func ParseBrandStatus(raw string) (BrandStatus, error) {
	switch BrandStatus(raw) {
	case BrandStatusPendingReview, BrandStatusApproved, BrandStatusRejected, BrandStatusResubmissionRequested:
		return BrandStatus(raw), nil
	}
	return "", fmt.Errorf("%w: unknown brand status %q", ErrBadRequest, raw)
}

// CanTransitionTo reports whether the review state machine permits moving from
// s to next. Approved is terminal; there is no revoke transition.
func (s BrandStatus) CanTransitionTo(next BrandStatus) bool {
	switch s {
	case BrandStatusPendingReview:
		return next == BrandStatusApproved || next == BrandStatusRejected
	case BrandStatusRejected:
		return next == BrandStatusResubmissionRequested
	case BrandStatusResubmissionRequested:
		return next == BrandStatusPendingReview
	case BrandStatusApproved:
		return false
	}
	return false
}

// Brand is a seller entity owned by exactly one account. Status is mutated by
// administrative review actions only; the authentication core reads it.
type Brand struct {
	ID             string
	OwnerAccountID string
	Name           string
	Status         BrandStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
