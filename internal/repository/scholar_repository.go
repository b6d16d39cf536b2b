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

// ScholarRepository provides database access for scholars, employees, and
// the per-scholar committee assignments consulted during authorization.
type ScholarRepository struct {
	db *sqlx.DB
}

// NewScholarRepository constructs the repository.
func NewScholarRepository(db *sqlx.DB) *ScholarRepository {
	return &ScholarRepository{db: db}
}

const scholarColumns = `scholar_id, user_id, batch, status, department, research_area, research_title,
	joining_date, phase, programme, location, supervisor_id, co_supervisor_id, created_at, updated_at`

// CreateScholar inserts a scholar profile row.
func (r *ScholarRepository) CreateScholar(ctx context.Context, scholar *models.Scholar) error {
	now := time.Now().UTC()
	if scholar.CreatedAt.IsZero() {
		scholar.CreatedAt = now
	}
	scholar.UpdatedAt = now
	if scholar.Status == "" {
		scholar.Status = models.ScholarStatusActive
	}
	const query = `INSERT INTO scholars
	(scholar_id, user_id, batch, status, department, research_area, research_title, joining_date,
	 phase, programme, location, supervisor_id, co_supervisor_id, created_at, updated_at)
	VALUES (:scholar_id, :user_id, :batch, :status, :department, :research_area, :research_title, :joining_date,
	 :phase, :programme, :location, :supervisor_id, :co_supervisor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, scholar); err != nil {
		return fmt.Errorf("create scholar: %w", err)
	}
	return nil
}

// GetScholar returns a scholar profile by scholar identifier.
func (r *ScholarRepository) GetScholar(ctx context.Context, scholarID string) (*models.Scholar, error) {
	query := `SELECT ` + scholarColumns + ` FROM scholars WHERE scholar_id = $1 LIMIT 1`
	var scholar models.Scholar
	if err := r.db.GetContext(ctx, &scholar, query, scholarID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get scholar: %w", err)
	}
	return &scholar, nil
}

// GetScholarByUserID returns the scholar profile owned by a user account.
func (r *ScholarRepository) GetScholarByUserID(ctx context.Context, userID string) (*models.Scholar, error) {
	query := `SELECT ` + scholarColumns + ` FROM scholars WHERE user_id = $1 LIMIT 1`
	var scholar models.Scholar
	if err := r.db.GetContext(ctx, &scholar, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get scholar by user: %w", err)
	}
	return &scholar, nil
}

// SetSupervisor updates the supervisor of record for a scholar.
func (r *ScholarRepository) SetSupervisor(ctx context.Context, scholarID, supervisorEmployeeID string) error {
	const query = `UPDATE scholars SET supervisor_id = $2, updated_at = $3 WHERE scholar_id = $1`
	result, err := r.db.ExecContext(ctx, query, scholarID, supervisorEmployeeID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set scholar supervisor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check supervisor update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePhase updates the scholar's programme phase.
func (r *ScholarRepository) UpdatePhase(ctx context.Context, scholarID, phase string) error {
	const query = `UPDATE scholars SET phase = $2, updated_at = $3 WHERE scholar_id = $1`
	if _, err := r.db.ExecContext(ctx, query, scholarID, phase, time.Now().UTC()); err != nil {
		return fmt.Errorf("update scholar phase: %w", err)
	}
	return nil
}

// CreateEmployee inserts an employee row.
func (r *ScholarRepository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	const query = `INSERT INTO employees
	(employee_id, user_id, designation, department, created_at, updated_at)
	VALUES (:employee_id, :user_id, :designation, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// GetEmployeeByUserID resolves the employee record behind a user account.
func (r *ScholarRepository) GetEmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	const query = `SELECT employee_id, user_id, designation, department, created_at, updated_at
	FROM employees WHERE user_id = $1 LIMIT 1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get employee by user: %w", err)
	}
	return &employee, nil
}

// AssignRACMember records a committee member assignment for a scholar.
func (r *ScholarRepository) AssignRACMember(ctx context.Context, member *models.RACMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.AssignedOn.IsZero() {
		member.AssignedOn = time.Now().UTC()
	}
	const query = `INSERT INTO rac_members (id, scholar_id, employee_id, member_role, assigned_on)
	VALUES (:id, :scholar_id, :employee_id, :member_role, :assigned_on)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("assign rac member: %w", err)
	}
	return nil
}

// ListRACMembers returns the committee assignments for a scholar at a stage.
func (r *ScholarRepository) ListRACMembers(ctx context.Context, scholarID string, role models.WorkflowStage) ([]models.RACMember, error) {
	const query = `SELECT id, scholar_id, employee_id, member_role, assigned_on
	FROM rac_members WHERE scholar_id = $1 AND member_role = $2 ORDER BY assigned_on ASC`
	var members []models.RACMember
	if err := r.db.SelectContext(ctx, &members, query, scholarID, role); err != nil {
		return nil, fmt.Errorf("list rac members: %w", err)
	}
	return members, nil
}
