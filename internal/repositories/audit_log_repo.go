package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/database"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/google/uuid"
)

type AuditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	log.ID = uuid.New().String()
	log.CreatedAt = time.Now()

	query := `
		INSERT INTO audit_logs (id, event_type, actor_id, resource_type, resource_id, action, success, failure_reason, source_address, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		log.ID, log.EventType, log.ActorID, log.ResourceType, log.ResourceID,
		log.Action, log.Success, log.FailureReason, log.SourceAddress,
		log.Metadata, log.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return log, nil
}

// GetRecentByEventType returns the newest entries for one event type.
func (r *AuditLogRepository) GetRecentByEventType(ctx context.Context, eventType string, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, event_type, actor_id, resource_type, resource_id, action, success, failure_reason, source_address, metadata, created_at
		FROM audit_logs
		WHERE event_type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AuditLog, 0, limit)
	for rows.Next() {
		var log models.AuditLog
		err := rows.Scan(
			&log.ID, &log.EventType, &log.ActorID, &log.ResourceType, &log.ResourceID,
			&log.Action, &log.Success, &log.FailureReason, &log.SourceAddress,
			&log.Metadata, &log.CreatedAt,
		)
		if err != nil {
			return nil, database.MapPostgresError(err)
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

// CountTodayByEventType counts entries of one event type since UTC midnight.
func (r *AuditLogRepository) CountTodayByEventType(ctx context.Context, eventType string) (int64, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE event_type = $1 AND created_at >= $2`,
		eventType, today,
	).Scan(&count)
	return count, err
}

// Cleanup removes audit entries older than the retention window.
func (r *AuditLogRepository) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
