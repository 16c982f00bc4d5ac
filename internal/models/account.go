package models

import (
	"strings"
	"time"
)

// Roles form a closed set; only brand managers can ever reach the seller console.
const (
	RoleUser         = "user"
	RoleBrandManager = "brand_manager"
	RoleAdmin        = "admin"
)

// Account is the read/mutate view of a stored account record. The security
// core never owns storage lifetime: it is handed a loaded record, mutates the
// lockout fields, and the repository commits the change.
type Account struct {
	ID                string
	Email             string
	PasswordHash      string // empty means no password provisioned; login is impossible
	Name              string
	Role              string // "user", "brand_manager", "admin"
	IsActive          bool
	LoginFailureCount int
	LockedUntil       *time.Time // temporary account lock expiry
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NormalizeEmail lowercases and trims an email for case-insensitive lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleBrandManager, RoleAdmin:
		return true
	}
	return false
}
