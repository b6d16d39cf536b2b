package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

// ReviewRepository reads the append-only review trail. Review rows are
// written only inside ApplicationRepository.ApplyDecision, in the same
// transaction as the stage transition; there is deliberately no standalone
// insert, update, or delete here.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListForApplication returns all reviews for an application in decision order.
func (r *ReviewRepository) ListForApplication(ctx context.Context, applicationID string) ([]models.Review, error) {
	const query = `SELECT id, application_id, reviewer_id, stage, decision, remarks, review_date
	FROM application_reviews WHERE application_id = $1 ORDER BY review_date ASC`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, applicationID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
