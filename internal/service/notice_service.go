package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type noticeStore interface {
	Create(ctx context.Context, notice *models.Notice) error
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error)
	Delete(ctx context.Context, id string) error
}

// NoticeService manages portal announcements.
type NoticeService struct {
	repo   noticeStore
	audit  auditLogger
	logger *zap.Logger
}

// NewNoticeService constructs the service.
func NewNoticeService(repo noticeStore, audit auditLogger, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, audit: audit, logger: logger}
}

// Publish creates a notice. Only staff roles may publish.
func (s *NoticeService) Publish(ctx context.Context, req dto.CreateNoticeRequest, actor *models.JWTClaims) (*models.Notice, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleScholar {
		return nil, appErrors.ErrForbidden
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and content are required")
	}

	notice := &models.Notice{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		TargetRole: req.TargetRole,
		CreatedBy:  actor.UserID,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}

	if s.audit != nil {
		payload, _ := json.Marshal(notice)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionNoticePublish,
			Resource:   "notices",
			ResourceID: &notice.ID,
			NewValues:  payload,
			IPAddress:  "system",
			UserAgent:  "notice-service",
		}); err != nil {
			s.logger.Warn("failed to persist audit log", zap.Error(err))
		}
	}
	return notice, nil
}

// Visible lists the notices the actor may see: role-scoped notices for their
// own role plus unscoped ones.
func (s *NoticeService) Visible(ctx context.Context, actor *models.JWTClaims, limit int) ([]models.Notice, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.NoticeFilter{Limit: limit}
	if actor.Role != models.RoleAdmin {
		role := actor.Role
		filter.Role = &role
	}
	notices, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// Remove deletes a notice. Admin only.
func (s *NoticeService) Remove(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	return nil
}
