package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

func newReviewRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReviewRepositoryListForApplication(t *testing.T) {
	db, mock, cleanup := newReviewRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	rows := sqlmock.NewRows([]string{"id", "application_id", "reviewer_id", "stage", "decision", "remarks", "review_date"}).
		AddRow("rev-1", "app-1", "user-sup", "supervisor", "approved", "endorsed", time.Now().Add(-time.Hour)).
		AddRow("rev-2", "app-1", "user-drc", "drc", "approved", "methodology is sound", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, application_id, reviewer_id")).
		WithArgs("app-1").
		WillReturnRows(rows)

	list, err := repo.ListForApplication(context.Background(), "app-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, models.StageSupervisor, list[0].Stage)
	require.Equal(t, models.StageDRC, list[1].Stage)
	require.NoError(t, mock.ExpectationsWereMet())
}
