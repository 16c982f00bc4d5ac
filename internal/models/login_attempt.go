package models

import "time"

// LoginAttempt is one entry in the attempt ledger, kept for forensics and the
// admin security dashboard. Records expire and are purged by the cleanup task.
type LoginAttempt struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	SourceAddress string    `db:"source_address"`
	AttemptTime   time.Time `db:"attempt_time"`
	Success       bool      `db:"success"`
	FailureReason *string   `db:"failure_reason"`
	ExpiresAt     time.Time `db:"expires_at"`
}
