package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

// ProgressRepository provides database access for research progress counters.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetByScholarID returns the progress snapshot for a scholar.
func (r *ProgressRepository) GetByScholarID(ctx context.Context, scholarID string) (*models.ResearchProgress, error) {
	const query = `SELECT id, scholar_id, completed_reviews, pending_reports, publications, last_review_date
	FROM research_progress WHERE scholar_id = $1 LIMIT 1`
	var progress models.ResearchProgress
	if err := r.db.GetContext(ctx, &progress, query, scholarID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get research progress: %w", err)
	}
	return &progress, nil
}

// Upsert creates or replaces the progress snapshot for a scholar.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *models.ResearchProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	const query = `INSERT INTO research_progress
	(id, scholar_id, completed_reviews, pending_reports, publications, last_review_date)
	VALUES (:id, :scholar_id, :completed_reviews, :pending_reports, :publications, :last_review_date)
	ON CONFLICT (scholar_id) DO UPDATE SET
	completed_reviews = EXCLUDED.completed_reviews,
	pending_reports = EXCLUDED.pending_reports,
	publications = EXCLUDED.publications,
	last_review_date = EXCLUDED.last_review_date`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert research progress: %w", err)
	}
	return nil
}

// RecordCompletedReview bumps the completed-review counter and stamps the
// review date. Missing rows are created on first use.
func (r *ProgressRepository) RecordCompletedReview(ctx context.Context, scholarID string) error {
	const query = `INSERT INTO research_progress
	(id, scholar_id, completed_reviews, pending_reports, publications, last_review_date)
	VALUES ($1, $2, 1, 0, 0, NOW())
	ON CONFLICT (scholar_id) DO UPDATE SET
	completed_reviews = research_progress.completed_reviews + 1,
	last_review_date = NOW()`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), scholarID); err != nil {
		return fmt.Errorf("record completed review: %w", err)
	}
	return nil
}
