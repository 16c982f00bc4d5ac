package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication rejections. ErrInvalidCredential also masks unknown
	// emails so callers cannot distinguish "no such account" from "wrong
	// password".
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrNoPasswordSet     = errors.New("account has no password set")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrAccountLocked     = errors.New("account is temporarily locked")
	ErrIPLocked          = errors.New("source address is temporarily locked")

	// Brand review errors
	ErrInvalidTransition = errors.New("invalid brand status transition")
)

// LockedError reports a lock rejection together with its expiry. It unwraps to
// the scope sentinel (ErrAccountLocked or ErrIPLocked) so errors.Is keeps
// working at call sites that only care about the scope.
type LockedError struct {
	Scope string // "account" or "ip"
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s locked until %s", e.Scope, e.Until.UTC().Format(time.RFC3339))
}

func (e *LockedError) Unwrap() error {
	if e.Scope == "ip" {
		return ErrIPLocked
	}
	return ErrAccountLocked
}

// NewAccountLockedError builds a LockedError for the account scope.
func NewAccountLockedError(until time.Time) *LockedError {
	return &LockedError{Scope: "account", Until: until}
}

// NewIPLockedError builds a LockedError for the source-address scope.
func NewIPLockedError(until time.Time) *LockedError {
	return &LockedError{Scope: "ip", Until: until}
}
