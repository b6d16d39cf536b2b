package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

// ApplicationRepository persists scholar applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, scholar_id, type, status, current_stage, details, final_outcome, submission_date`

// Create inserts a new application row.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	if app.SubmissionDate.IsZero() {
		app.SubmissionDate = time.Now().UTC()
	}
	const query = `INSERT INTO applications
	(id, scholar_id, type, status, current_stage, details, final_outcome, submission_date)
	VALUES (:id, :scholar_id, :type, :status, :current_stage, :details, :final_outcome, :submission_date)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetByID fetches an application by identifier.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications matching the filter, newest first.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + applicationColumns + ` FROM applications`)

	conditions := make([]string, 0, 4)
	if filter.ScholarID != "" {
		args = append(args, filter.ScholarID)
		conditions = append(conditions, fmt.Sprintf("scholar_id = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		conditions = append(conditions, fmt.Sprintf("current_stage = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY submission_date DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// ListByStage returns the pending review queue for one workflow stage.
func (r *ApplicationRepository) ListByStage(ctx context.Context, stage models.WorkflowStage) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	WHERE current_stage = $1 AND status = $2
	ORDER BY submission_date DESC`
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, stage, models.ApplicationStatusPending); err != nil {
		return nil, fmt.Errorf("list applications by stage: %w", err)
	}
	return apps, nil
}

// UpdateDecisionParams groups the columns a decision may mutate.
type UpdateDecisionParams struct {
	ID           string
	Stage        models.WorkflowStage
	Status       models.ApplicationStatus
	FinalOutcome *models.ApplicationStatus
}

// ApplyDecision persists the evaluated transition and the review record that
// produced it as one atomic write. The guard on the current Pending status
// serializes concurrent decisions against the same application: the race
// loser's UPDATE affects zero rows, the transaction rolls back with nothing
// written, and the caller maps sql.ErrNoRows to an invalid-state failure.
func (r *ApplicationRepository) ApplyDecision(ctx context.Context, params UpdateDecisionParams, review *models.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := fmt.Sprintf(`UPDATE applications
	SET current_stage = :stage, status = :status, final_outcome = :final_outcome
	WHERE id = :id AND status = '%s'`, models.ApplicationStatusPending)
	result, err := tx.NamedExecContext(ctx, query, map[string]interface{}{
		"id":            params.ID,
		"stage":         params.Stage,
		"status":        params.Status,
		"final_outcome": params.FinalOutcome,
	})
	if err != nil {
		return fmt.Errorf("apply application decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check application decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.ReviewDate.IsZero() {
		review.ReviewDate = time.Now().UTC()
	}
	const insert = `INSERT INTO application_reviews
	(id, application_id, reviewer_id, stage, decision, remarks, review_date)
	VALUES (:id, :application_id, :reviewer_id, :stage, :decision, :remarks, :review_date)`
	if _, err := tx.NamedExecContext(ctx, insert, review); err != nil {
		return fmt.Errorf("append review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision transaction: %w", err)
	}
	return nil
}
