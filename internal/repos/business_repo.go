// internal/repos/business_repo.go
package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

// BusinessRepo loads and updates stored businesses
type BusinessRepo struct {
	db *sqlx.DB
}

func NewBusinessRepo(db *sqlx.DB) *BusinessRepo {
	return &BusinessRepo{db: db}
}

var _ services.BusinessStore = (*BusinessRepo)(nil)

func (r *BusinessRepo) GetBusiness(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	var business models.Business
	query := `SELECT * FROM businesses WHERE business_id = $1 LIMIT 1`
	err := r.db.GetContext(ctx, &business, query, businessID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("business %s not found", businessID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business %s: %w", businessID, err)
	}
	return &business, nil
}

// GetBusinessIDsByScheduledDOW returns active businesses scheduled for the
// given weekday (0 = Monday)
func (r *BusinessRepo) GetBusinessIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT business_id FROM businesses WHERE scheduled_dow = $1 AND is_active ORDER BY created_at`
	err := r.db.SelectContext(ctx, &ids, query, dow)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses for weekday %d: %w", dow, err)
	}
	return ids, nil
}

func (r *BusinessRepo) MarkBusinessRun(ctx context.Context, businessID uuid.UUID) error {
	query := `UPDATE businesses SET last_run_at = NOW() WHERE business_id = $1`
	result, err := r.db.ExecContext(ctx, query, businessID)
	if err != nil {
		return fmt.Errorf("failed to mark business %s as run: %w", businessID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("business %s not found", businessID)
	}
	return nil
}
