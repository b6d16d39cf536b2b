package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type noticeStoreStub struct {
	notices    []models.Notice
	lastFilter models.NoticeFilter
}

func (s *noticeStoreStub) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = "notice-1"
	}
	s.notices = append(s.notices, *notice)
	return nil
}

func (s *noticeStoreStub) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	s.lastFilter = filter
	return s.notices, nil
}

func (s *noticeStoreStub) Delete(ctx context.Context, id string) error {
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestNoticePublishRecordsAuthor(t *testing.T) {
	store := &noticeStoreStub{}
	audit := &auditStub{}
	svc := NewNoticeService(store, audit, nil)

	drc := models.RoleDRC
	notice, err := svc.Publish(context.Background(), dto.CreateNoticeRequest{
		Title:      "  DRC meeting schedule ",
		Content:    "Meetings resume next Monday.",
		TargetRole: &drc,
	}, actorWithRole("user-drc", models.RoleDRC))
	require.NoError(t, err)
	require.Equal(t, "DRC meeting schedule", notice.Title)
	require.Equal(t, "user-drc", notice.CreatedBy)
	require.NotNil(t, notice.TargetRole)
	require.Len(t, audit.logs, 1)
}

func TestNoticePublishForbidsScholars(t *testing.T) {
	svc := NewNoticeService(&noticeStoreStub{}, nil, nil)

	_, err := svc.Publish(context.Background(), dto.CreateNoticeRequest{
		Title:   "hello",
		Content: "world",
	}, scholarActor("user-scholar"))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestNoticePublishRejectsEmptyContent(t *testing.T) {
	svc := NewNoticeService(&noticeStoreStub{}, nil, nil)

	_, err := svc.Publish(context.Background(), dto.CreateNoticeRequest{
		Title:   "title only",
		Content: "   ",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestNoticeVisibleScopesByRole(t *testing.T) {
	store := &noticeStoreStub{}
	svc := NewNoticeService(store, nil, nil)

	_, err := svc.Visible(context.Background(), scholarActor("user-scholar"), 10)
	require.NoError(t, err)
	require.NotNil(t, store.lastFilter.Role)
	require.Equal(t, models.RoleScholar, *store.lastFilter.Role)

	// Admins see everything.
	_, err = svc.Visible(context.Background(), actorWithRole("user-admin", models.RoleAdmin), 10)
	require.NoError(t, err)
	require.Nil(t, store.lastFilter.Role)
}

func TestNoticeRemoveAdminOnly(t *testing.T) {
	store := &noticeStoreStub{notices: []models.Notice{{ID: "notice-1"}}}
	svc := NewNoticeService(store, nil, nil)

	err := svc.Remove(context.Background(), "notice-1", actorWithRole("user-drc", models.RoleDRC))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	err = svc.Remove(context.Background(), "notice-1", actorWithRole("user-admin", models.RoleAdmin))
	require.NoError(t, err)

	err = svc.Remove(context.Background(), "notice-1", actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
