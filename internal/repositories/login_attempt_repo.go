package repositories

import (
	"context"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/database"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// LoginAttemptRepository persists the attempt ledger used for forensics and
// the admin dashboard. Lock decisions are not derived from it.
type LoginAttemptRepository struct {
	db *database.DB
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// RecordAttempt appends one attempt outcome to the ledger.
func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (email, source_address, attempt_time, success, failure_reason, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.Email,
		attempt.SourceAddress,
		attempt.AttemptTime,
		attempt.Success,
		attempt.FailureReason,
		attempt.ExpiresAt,
	)

	return err
}

// CountFailedSince returns the number of failed attempts recorded after since.
func (r *LoginAttemptRepository) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM login_attempts WHERE success = false AND attempt_time >= $1`, since,
	).Scan(&count)
	return count, err
}

// RecentFailures returns the newest failed attempts for the dashboard feed.
func (r *LoginAttemptRepository) RecentFailures(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, email, source_address, attempt_time, success, failure_reason, expires_at
		FROM login_attempts
		WHERE success = false
		ORDER BY attempt_time DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0, limit)
	for rows.Next() {
		var attempt models.LoginAttempt
		err := rows.Scan(
			&attempt.ID, &attempt.Email, &attempt.SourceAddress,
			&attempt.AttemptTime, &attempt.Success, &attempt.FailureReason,
			&attempt.ExpiresAt,
		)
		if err != nil {
			return nil, database.MapPostgresError(err)
		}
		attempts = append(attempts, &attempt)
	}

	return attempts, rows.Err()
}

// DeleteExpiredAttempts removes ledger entries past their expiry.
func (r *LoginAttemptRepository) DeleteExpiredAttempts(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM login_attempts WHERE expires_at <= CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
