package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

func newApplicationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestApplicationRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{
		ScholarID:    "CB.EN.D*CSE21001",
		Type:         models.ApplicationTypeExtension,
		CurrentStage: models.StageSupervisor,
		Details: models.ApplicationDetails{
			Extension: &models.ExtensionDetails{
				RegistrationDate:  "2021-07-01",
				ExtensionDuration: "6 months",
				Reason:            "additional experiments",
			},
		},
	}
	require.NoError(t, repo.Create(context.Background(), app))
	require.NotEmpty(t, app.ID)
	require.Equal(t, models.ApplicationStatusPending, app.Status)

	rows := sqlmock.NewRows([]string{"id", "scholar_id", "type", "status", "current_stage", "details", "final_outcome", "submission_date"}).
		AddRow(app.ID, app.ScholarID, "Extension", "Pending", "supervisor", `{"extension":{"registrationDate":"2021-07-01","extensionDuration":"6 months","reason":"additional experiments"}}`, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, scholar_id, type, status, current_stage")).
		WithArgs(app.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	require.Equal(t, app.ID, found.ID)
	require.Equal(t, models.StageSupervisor, found.CurrentStage)
	require.NotNil(t, found.Details.Extension)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "scholar_id", "type", "status", "current_stage", "details", "final_outcome", "submission_date"}).
		AddRow("app-1", "scholar-1", "Supervisor Change", "Pending", "drc", `{}`, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, scholar_id, type, status, current_stage")).
		WithArgs("scholar-1", "Pending", "drc").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.ApplicationFilter{
		ScholarID: "scholar-1",
		Status:    []models.ApplicationStatus{models.ApplicationStatusPending},
		Stage:     models.StageDRC,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "app-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryApplyDecision(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_reviews")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	review := &models.Review{
		ApplicationID: "app-1",
		ReviewerID:    "user-drc",
		Stage:         models.StageDRC,
		Decision:      models.DecisionApproved,
		Remarks:       "methodology is sound",
	}
	err := repo.ApplyDecision(context.Background(), UpdateDecisionParams{
		ID:     "app-1",
		Stage:  models.StageIRC,
		Status: models.ApplicationStatusPending,
	}, review)
	require.NoError(t, err)
	require.NotEmpty(t, review.ID)
	require.False(t, review.ReviewDate.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryApplyDecisionLosesRace(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	// The guarded UPDATE matches no rows, so the review insert never runs
	// and the transaction rolls back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rejected := models.ApplicationStatusRejected
	err := repo.ApplyDecision(context.Background(), UpdateDecisionParams{
		ID:           "app-1",
		Stage:        models.StageDRC,
		Status:       rejected,
		FinalOutcome: &rejected,
	}, &models.Review{ApplicationID: "app-1", ReviewerID: "user-drc"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
