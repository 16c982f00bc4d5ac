package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Event types for audit logging
const (
	AuditEventTypeLogin         = "login"
	AuditEventTypeAccountUnlock = "account_unlock"
	AuditEventTypeIPLockClear   = "ip_lock_clear"
	AuditEventTypeBrandReview   = "brand_review"
	AuditEventTypeBrandSubmit   = "brand_submit"
)

// ValidAuditEventType reports whether s is one of the known event types.
// Feed queries are rejected at the boundary, like brand statuses.
func ValidAuditEventType(s string) bool {
	switch s {
	case AuditEventTypeLogin, AuditEventTypeAccountUnlock, AuditEventTypeIPLockClear,
		AuditEventTypeBrandReview, AuditEventTypeBrandSubmit:
		return true
	}
	return false
}

// Resource types
const (
	AuditResourceTypeAccount = "account"
	AuditResourceTypeBrand   = "brand"
	AuditResourceTypeIPLock  = "ip_lock"
)

type AuditLog struct {
	ID            string        `db:"id"`
	EventType     string        `db:"event_type"`
	ActorID       *string       `db:"actor_id"`
	ResourceType  *string       `db:"resource_type"`
	ResourceID    *string       `db:"resource_id"`
	Action        string        `db:"action"`
	Success       bool          `db:"success"`
	FailureReason *string       `db:"failure_reason"`
	SourceAddress *string       `db:"source_address"`
	Metadata      AuditMetadata `db:"metadata"`
	CreatedAt     time.Time     `db:"created_at"`
}

// AuditMetadata holds additional context for audit events
type AuditMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (am *AuditMetadata) Scan(value interface{}) error {
	if value == nil {
		*am = make(AuditMetadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*am = AuditMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (am AuditMetadata) Value() (driver.Value, error) {
	if am == nil {
		return nil, nil
	}
	return json.Marshal(am)
}
