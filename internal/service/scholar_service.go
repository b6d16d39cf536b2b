package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type scholarProfileStore interface {
	GetScholar(ctx context.Context, scholarID string) (*models.Scholar, error)
	GetScholarByUserID(ctx context.Context, userID string) (*models.Scholar, error)
	ListRACMembers(ctx context.Context, scholarID string, role models.WorkflowStage) ([]models.RACMember, error)
	AssignRACMember(ctx context.Context, member *models.RACMember) error
}

// ScholarService exposes scholar profiles and committee assignments.
type ScholarService struct {
	repo   scholarProfileStore
	logger *zap.Logger
}

// NewScholarService constructs the service.
func NewScholarService(repo scholarProfileStore, logger *zap.Logger) *ScholarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScholarService{repo: repo, logger: logger}
}

// Profile returns a scholar profile. Scholars can only read their own.
func (s *ScholarService) Profile(ctx context.Context, scholarID string, actor *models.JWTClaims) (*models.Scholar, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	scholar, err := s.repo.GetScholar(ctx, scholarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholar")
	}
	if actor.Role == models.RoleScholar && scholar.UserID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return scholar, nil
}

// OwnProfile resolves the scholar profile behind the acting user account.
func (s *ScholarService) OwnProfile(ctx context.Context, actor *models.JWTClaims) (*models.Scholar, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	scholar, err := s.repo.GetScholarByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no scholar profile linked to this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholar")
	}
	return scholar, nil
}

// Committee lists a scholar's committee assignments for one stage.
func (s *ScholarService) Committee(ctx context.Context, scholarID string, stage models.WorkflowStage, actor *models.JWTClaims) ([]models.RACMember, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	members, err := s.repo.ListRACMembers(ctx, scholarID, stage)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list committee members")
	}
	return members, nil
}

// AssignCommitteeMember records a committee assignment. Admin only.
func (s *ScholarService) AssignCommitteeMember(ctx context.Context, member *models.RACMember, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	if member == nil || member.ScholarID == "" || member.EmployeeID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "scholarId and employeeId are required")
	}
	switch member.MemberRole {
	case models.StageDRC, models.StageIRC, models.StageDoAA:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "memberRole must be a committee stage")
	}
	if _, err := s.repo.GetScholar(ctx, member.ScholarID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "scholar not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholar")
	}
	if err := s.repo.AssignRACMember(ctx, member); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign committee member")
	}
	return nil
}
