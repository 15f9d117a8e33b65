// internal/repos/fingerprint_repo.go
package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

// FingerprintRepo persists completed fingerprint analyses. The full analysis
// is stored as JSONB; headline metrics are denormalized into columns for
// querying without unpacking the document.
type FingerprintRepo struct {
	db *sqlx.DB
}

func NewFingerprintRepo(db *sqlx.DB) *FingerprintRepo {
	return &FingerprintRepo{db: db}
}

var _ services.FingerprintStore = (*FingerprintRepo)(nil)

func (r *FingerprintRepo) SaveAnalysis(ctx context.Context, analysis *models.FingerprintAnalysis) error {
	document, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis %s: %w", analysis.FingerprintID, err)
	}

	query := `
		INSERT INTO fingerprints
		(fingerprint_id, business_id, business_name, visibility_score, mention_rate,
		 sentiment_score, confidence_level, avg_rank_position, total_queries,
		 successful_queries, total_cost, analysis, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		analysis.FingerprintID, analysis.BusinessID, analysis.BusinessName,
		analysis.Metrics.VisibilityScore, analysis.Metrics.MentionRate,
		analysis.Metrics.SentimentScore, analysis.Metrics.ConfidenceLevel,
		analysis.Metrics.AvgRankPosition, analysis.Metrics.TotalQueries,
		analysis.Metrics.SuccessfulQueries, analysis.TotalCost,
		document, analysis.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", analysis.FingerprintID, err)
	}
	return nil
}

func (r *FingerprintRepo) GetLatestAnalysis(ctx context.Context, businessID uuid.UUID) (*models.FingerprintAnalysis, error) {
	var document []byte
	query := `SELECT analysis FROM fingerprints WHERE business_id = $1 ORDER BY generated_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &document, query, businessID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no analysis found for business %s", businessID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest analysis for %s: %w", businessID, err)
	}

	var analysis models.FingerprintAnalysis
	if err := json.Unmarshal(document, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis for %s: %w", businessID, err)
	}
	return &analysis, nil
}
