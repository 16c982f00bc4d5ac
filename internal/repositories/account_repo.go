package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/database"
	"github.com/NujabesCode/itsmycolor-authgate/internal/lockout"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, email, password_hash, name, role, is_active, login_failure_count, locked_until, created_at, updated_at`

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var passwordHash *string
	var lockedUntil *time.Time

	err := scanner.Scan(
		&account.ID, &account.Email, &passwordHash, &account.Name,
		&account.Role, &account.IsActive, &account.LoginFailureCount,
		&lockedUntil, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		account.PasswordHash = *passwordHash
	}
	account.LockedUntil = lockedUntil

	return &account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByEmail looks an account up by email, case-insensitively.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = lower($1)`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = uuid.New().String()
	account.Email = models.NormalizeEmail(account.Email)

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.Role == "" {
		account.Role = models.RoleUser
	}

	query := `
		INSERT INTO accounts (id, email, password_hash, name, role, is_active, login_failure_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + accountColumns

	var passwordHash *string
	if account.PasswordHash != "" {
		passwordHash = &account.PasswordHash
	}

	return scanAccountRow(r.db.Pool.QueryRow(ctx, query,
		account.ID, account.Email, passwordHash, account.Name,
		account.Role, account.IsActive, account.LoginFailureCount,
		account.CreatedAt, account.UpdatedAt,
	))
}

// RecordLoginFailure applies the lockout failure transition under a row lock,
// so concurrent failures on one account serialize and the lock trips at most
// once. Failures arriving after the lock tripped are not counted. Distinct
// accounts lock distinct rows and never contend. Returns the post-transition
// account.
func (r *AccountRepository) RecordLoginFailure(ctx context.Context, accountID string, policy lockout.Policy, now time.Time) (*models.Account, error) {
	var updated *models.Account

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
		account, err := scanAccountRow(tx.QueryRow(ctx, query, accountID))
		if err != nil {
			return err
		}

		// Re-check under the lock: a concurrent failure may have tripped the
		// lock after our caller's evaluate. Locked attempts are not counted.
		if decision := lockout.Evaluate(account, now); !decision.Allowed {
			updated = account
			return nil
		}

		lockout.RecordFailure(account, policy, now)

		_, err = tx.Exec(ctx,
			`UPDATE accounts SET login_failure_count = $1, locked_until = $2, updated_at = $3 WHERE id = $4`,
			account.LoginFailureCount, account.LockedUntil, now, accountID,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}

	return updated, nil
}

// RecordLoginSuccess resets the failure counter and clears any lock.
func (r *AccountRepository) RecordLoginSuccess(ctx context.Context, accountID string, now time.Time) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET login_failure_count = 0, locked_until = NULL, updated_at = $1 WHERE id = $2`,
		now, accountID,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearLock is the administrative unlock. It applies the same reset transition
// as RecordLoginSuccess, under the row lock so a concurrent failure cannot
// interleave with the reset.
func (r *AccountRepository) ClearLock(ctx context.Context, accountID string, now time.Time) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
		account, err := scanAccountRow(tx.QueryRow(ctx, query, accountID))
		if err != nil {
			return err
		}

		lockout.Unlock(account)

		_, err = tx.Exec(ctx,
			`UPDATE accounts SET login_failure_count = $1, locked_until = $2, updated_at = $3 WHERE id = $4`,
			account.LoginFailureCount, account.LockedUntil, now, accountID,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}
		return nil
	})
}

func (r *AccountRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

// CountLocked counts accounts whose lock has not yet expired.
func (r *AccountRepository) CountLocked(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE locked_until IS NOT NULL AND locked_until >= $1`, now,
	).Scan(&count)
	return count, err
}
