// Package lockout owns the per-account failure counter and lock expiry
// transitions. The functions here are pure state transitions over an Account
// record; persistence is the caller's concern and must be committed atomically
// per account (see repositories.AccountRepository).
package lockout

import (
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// Policy holds the account lockout constants.
type Policy struct {
	MaxFailures  int           // failures that trip the lock
	LockDuration time.Duration // how long a tripped lock lasts
}

// DefaultPolicy matches the production defaults: 5 failures, 15 minute lock.
func DefaultPolicy() Policy {
	return Policy{
		MaxFailures:  5,
		LockDuration: 15 * time.Minute,
	}
}

// Decision is the outcome of evaluating an account's lock state.
type Decision struct {
	Allowed     bool
	LockedUntil time.Time // zero unless !Allowed
}

// Evaluate checks whether the account may attempt authentication at now.
// A lockedUntil in the past is treated as expired: the caller must never
// refuse on a stale timestamp.
func Evaluate(account *models.Account, now time.Time) Decision {
	if account.LockedUntil != nil && !account.LockedUntil.Before(now) {
		return Decision{Allowed: false, LockedUntil: *account.LockedUntil}
	}
	return Decision{Allowed: true}
}

// RecordFailure increments the failure counter and, when the post-increment
// count reaches the threshold without an active lock, sets the lock expiry.
// The counter is deliberately not reset on locking so an operator can see how
// many attempts occurred. Callers must gate on Evaluate first: failures while
// locked are rejected upstream and never counted, which keeps an attacker
// from extending the lock window by continuing to probe.
func RecordFailure(account *models.Account, policy Policy, now time.Time) {
	account.LoginFailureCount++

	if account.LoginFailureCount >= policy.MaxFailures {
		if account.LockedUntil == nil || account.LockedUntil.Before(now) {
			until := now.Add(policy.LockDuration)
			account.LockedUntil = &until
		}
	}
}

// RecordSuccess unconditionally clears the counter and any lock.
func RecordSuccess(account *models.Account) {
	account.LoginFailureCount = 0
	account.LockedUntil = nil
}

// Unlock is the explicit administrative reset. Like RecordSuccess it clears
// both the counter and the lock together.
func Unlock(account *models.Account) {
	account.LoginFailureCount = 0
	account.LockedUntil = nil
}
