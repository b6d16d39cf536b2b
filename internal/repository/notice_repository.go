package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

// NoticeRepository provides database access for portal announcements.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create inserts a notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	if notice.Date.IsZero() {
		notice.Date = time.Now().UTC()
	}
	const query = `INSERT INTO notices (id, title, content, target_role, created_by, date)
	VALUES (:id, :title, :content, :target_role, :created_by, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// List returns notices visible to the filter's role, newest first. Notices
// without a target role are visible to everyone.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	query := `SELECT id, title, content, target_role, created_by, date FROM notices`
	args := []interface{}{}
	if filter.Role != nil {
		query += ` WHERE target_role IS NULL OR target_role = $1`
		args = append(args, *filter.Role)
	}
	query += ` ORDER BY date DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` LIMIT %d`, limit)

	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, args...); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// Delete removes a notice by id.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notice delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
