package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/NujabesCode/itsmycolor-authgate/internal/database"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const brandColumns = `id, owner_account_id, name, status, created_at, updated_at`

type BrandRepository struct {
	db *database.DB
}

func NewBrandRepository(db *database.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func scanBrandRow(scanner rowScanner) (*models.Brand, error) {
	var brand models.Brand
	var rawStatus string

	err := scanner.Scan(
		&brand.ID, &brand.OwnerAccountID, &brand.Name, &rawStatus,
		&brand.CreatedAt, &brand.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	// Stored status values are validated on the way in, never trusted.
	status, err := models.ParseBrandStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("brand %s: %w", brand.ID, err)
	}
	brand.Status = status

	return &brand, nil
}

func scanBrandRows(rows pgx.Rows) ([]*models.Brand, error) {
	defer rows.Close()

	brands := make([]*models.Brand, 0)

	for rows.Next() {
		brand, err := scanBrandRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return brands, nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1`
	return scanBrandRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	brand.ID = uuid.New().String()

	now := time.Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	if brand.Status == "" {
		brand.Status = models.BrandStatusPendingReview
	}

	query := `
		INSERT INTO brands (id, owner_account_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + brandColumns

	return scanBrandRow(r.db.Pool.QueryRow(ctx, query,
		brand.ID, brand.OwnerAccountID, brand.Name, string(brand.Status),
		brand.CreatedAt, brand.UpdatedAt,
	))
}

func (r *BrandRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE owner_account_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, ownerAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}

	return scanBrandRows(rows)
}

// StatusesByOwner returns just the status values of an owner's brands, the
// input the seller-console authorization gate needs.
func (r *BrandRepository) StatusesByOwner(ctx context.Context, ownerAccountID string) ([]models.BrandStatus, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT status FROM brands WHERE owner_account_id = $1`, ownerAccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]models.BrandStatus, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, database.MapPostgresError(err)
		}
		status, err := models.ParseBrandStatus(raw)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return statuses, nil
}

// UpdateStatus moves a brand to newStatus only if it still has the expected
// current status. A zero rows-affected result means a concurrent review beat
// us and the caller must re-read.
func (r *BrandRepository) UpdateStatus(ctx context.Context, brandID string, from, to models.BrandStatus, now time.Time) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE brands SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(to), now, brandID, string(from),
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrConflict
	}
	return nil
}
