// internal/repos/repos.go
package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Manager bundles the per-table repositories over one shared connection pool
type Manager struct {
	db           *sqlx.DB
	Businesses   *BusinessRepo
	Fingerprints *FingerprintRepo
}

// NewManager creates the repository manager over an open connection
func NewManager(db *sqlx.DB) *Manager {
	return &Manager{
		db:           db,
		Businesses:   NewBusinessRepo(db),
		Fingerprints: NewFingerprintRepo(db),
	}
}

// EnsureSchema creates the tables and indexes this service needs. Safe to run
// on every boot.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS businesses (
			business_id   UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			website_url   TEXT NOT NULL DEFAULT '',
			category      TEXT,
			country       TEXT NOT NULL DEFAULT 'US',
			region        TEXT,
			city          TEXT,
			scheduled_dow INT,
			is_active     BOOLEAN NOT NULL DEFAULT true,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_run_at   TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_businesses_scheduled_dow ON businesses(scheduled_dow) WHERE is_active;

		CREATE TABLE IF NOT EXISTS fingerprints (
			fingerprint_id     UUID PRIMARY KEY,
			business_id        UUID NOT NULL,
			business_name      TEXT NOT NULL,
			visibility_score   INT NOT NULL,
			mention_rate       DOUBLE PRECISION NOT NULL,
			sentiment_score    DOUBLE PRECISION NOT NULL,
			confidence_level   DOUBLE PRECISION NOT NULL,
			avg_rank_position  DOUBLE PRECISION,
			total_queries      INT NOT NULL,
			successful_queries INT NOT NULL,
			total_cost         DOUBLE PRECISION NOT NULL,
			analysis           JSONB NOT NULL,
			generated_at       TIMESTAMPTZ NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_fingerprints_business ON fingerprints(business_id, generated_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
