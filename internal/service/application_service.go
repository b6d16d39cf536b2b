package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/repository"
	"github.com/Poojitha-916/DRC-capstone/internal/workflow"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	ListByStage(ctx context.Context, stage models.WorkflowStage) ([]models.Application, error)
	ApplyDecision(ctx context.Context, params repository.UpdateDecisionParams, review *models.Review) error
}

type reviewStore interface {
	ListForApplication(ctx context.Context, applicationID string) ([]models.Review, error)
}

type assignmentStore interface {
	GetScholar(ctx context.Context, scholarID string) (*models.Scholar, error)
	GetScholarByUserID(ctx context.Context, userID string) (*models.Scholar, error)
	GetEmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error)
	ListRACMembers(ctx context.Context, scholarID string, role models.WorkflowStage) ([]models.RACMember, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ChangeApplier applies the side effect of an approved application of a
// particular type.
type ChangeApplier interface {
	Apply(ctx context.Context, app *models.Application) error
}

// ChangeApplierFunc allows using plain functions.
type ChangeApplierFunc func(ctx context.Context, app *models.Application) error

// Apply implements ChangeApplier.
func (f ChangeApplierFunc) Apply(ctx context.Context, app *models.Application) error {
	return f(ctx, app)
}

type queueCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type progressRecorder interface {
	RecordCompletedReview(ctx context.Context, scholarID string) error
}

type workflowObserver interface {
	RecordSubmission(appType models.ApplicationType)
	RecordDecision(stage models.WorkflowStage, decision models.ReviewDecision)
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ApplicationService orchestrates the application lifecycle: submission,
// review queues, and the stage-by-stage decision workflow.
type ApplicationService struct {
	repo     applicationStore
	reviews  reviewStore
	scholars assignmentStore
	registry *workflow.Registry
	audit    auditLogger
	appliers map[models.ApplicationType]ChangeApplier
	cache    queueCache
	progress progressRecorder
	observer workflowObserver
	users    userDirectory
	queueTTL time.Duration
	logger   *zap.Logger
}

// ApplicationServiceOption configures the service.
type ApplicationServiceOption func(*ApplicationService)

// WithChangeAppliers sets the applier map keyed by application type.
func WithChangeAppliers(appliers map[models.ApplicationType]ChangeApplier) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if s.appliers == nil {
			s.appliers = make(map[models.ApplicationType]ChangeApplier)
		}
		for k, v := range appliers {
			s.appliers[k] = v
		}
	}
}

// WithQueueCache enables caching of per-stage review queues.
func WithQueueCache(cache queueCache, ttl time.Duration) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if cache != nil {
			s.cache = cache
			s.queueTTL = ttl
		}
	}
}

// WithUserDirectory lets admin decisions be recorded on behalf of another
// reviewer account after verifying that account exists.
func WithUserDirectory(users userDirectory) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if users != nil {
			s.users = users
		}
	}
}

// WithWorkflowObserver enables submission and decision counters.
func WithWorkflowObserver(observer workflowObserver) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithProgressRecorder enables progress counter updates on closed applications.
func WithProgressRecorder(recorder progressRecorder) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if recorder != nil {
			s.progress = recorder
		}
	}
}

// NewApplicationService constructs the service with defaults.
func NewApplicationService(repo applicationStore, reviews reviewStore, scholars assignmentStore, registry *workflow.Registry, audit auditLogger, logger *zap.Logger, opts ...ApplicationServiceOption) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ApplicationService{
		repo:     repo,
		reviews:  reviews,
		scholars: scholars,
		registry: registry,
		audit:    audit,
		appliers: make(map[models.ApplicationType]ChangeApplier),
		queueTTL: 30 * time.Second,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit validates and stores a new application for the acting scholar. The
// application starts Pending at the first stage of its type's workflow.
func (s *ApplicationService) Submit(ctx context.Context, req dto.CreateApplicationRequest, actor *models.JWTClaims) (*models.Application, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleScholar {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only scholars may submit applications")
	}

	def, err := s.registry.Definition(req.Type)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported application type: %s", req.Type))
	}

	variant, err := req.Details.Variant()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if variant != req.Type {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("details payload does not match application type %s", req.Type))
	}

	scholar, err := s.scholars.GetScholarByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no scholar profile linked to this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scholar profile")
	}

	app := &models.Application{
		ScholarID:    scholar.ScholarID,
		Type:         req.Type,
		Status:       models.ApplicationStatusPending,
		CurrentStage: def.First(),
		Details:      req.Details,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	if s.observer != nil {
		s.observer.RecordSubmission(app.Type)
	}
	s.invalidateQueues(ctx)
	s.emitAudit(ctx, actor.UserID, models.AuditActionApplicationSubmit, app.ID, app)
	return app, nil
}

// Get returns an application with its review trail, enforcing scope: scholars
// see only their own applications.
func (s *ApplicationService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationWithTrail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if actor.Role == models.RoleScholar {
		scholar, err := s.scholars.GetScholarByUserID(ctx, actor.UserID)
		if err != nil || scholar.ScholarID != app.ScholarID {
			return nil, appErrors.ErrForbidden
		}
	}
	reviews, err := s.reviews.ListForApplication(ctx, app.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review trail")
	}
	return &dto.ApplicationWithTrail{Application: *app, Reviews: reviews}, nil
}

// List returns applications visible to the actor. Scholars are pinned to
// their own submissions regardless of the requested filter.
func (s *ApplicationService) List(ctx context.Context, query dto.ApplicationQuery, actor *models.JWTClaims) ([]models.Application, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.ApplicationFilter{
		ScholarID: query.ScholarID,
		Status:    query.Status,
		Stage:     query.Stage,
		Type:      query.Type,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	if actor.Role == models.RoleScholar {
		scholar, err := s.scholars.GetScholarByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.ErrForbidden
		}
		filter.ScholarID = scholar.ScholarID
	}
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// PendingQueue returns the pending applications awaiting a decision at the
// given stage, served from cache when enabled.
func (s *ApplicationService) PendingQueue(ctx context.Context, stage models.WorkflowStage, actor *models.JWTClaims) ([]models.Application, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleScholar {
		return nil, appErrors.ErrForbidden
	}

	key := repository.ReviewQueueKey(string(stage))
	if s.cache != nil {
		var cached []models.Application
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("review queue cache read failed", zap.Error(err))
		}
	}

	apps, err := s.repo.ListByStage(ctx, stage)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review queue")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, apps, s.queueTTL); err != nil {
			s.logger.Warn("review queue cache write failed", zap.Error(err))
		}
	}
	return apps, nil
}

// SubmitDecision records one reviewer decision against a pending application
// and advances or terminates the workflow accordingly.
//
// Checks run in a fixed order: existence, open state, reviewer identity,
// payload validity, reviewer authorization. A request that fails any of
// them leaves the application and its review trail untouched.
func (s *ApplicationService) SubmitDecision(ctx context.Context, id string, req dto.ReviewApplicationRequest, actor *models.JWTClaims) (*DecisionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	def, err := s.registry.Definition(app.Type)
	if err != nil {
		return nil, err
	}

	if app.Status != models.ApplicationStatusPending || app.CurrentStage == def.TerminalStage {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application is already decided")
	}

	reviewerID, err := s.resolveReviewer(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	if req.Decision != models.DecisionApproved && req.Decision != models.DecisionRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approved or rejected")
	}
	remarks := strings.TrimSpace(req.Remarks)
	if remarks == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remarks are required")
	}

	if err := s.authorizeReviewer(ctx, def, app, actor); err != nil {
		return nil, err
	}

	outcome := workflow.Evaluate(def, app.CurrentStage, req.Decision)

	// The review is tagged with the stage the application was at when the
	// decision was made, not the stage it moves to. The guarded update and
	// the review insert commit together: the loser of a decision race
	// leaves no review row behind.
	review := &models.Review{
		ApplicationID: app.ID,
		ReviewerID:    reviewerID,
		Stage:         app.CurrentStage,
		Decision:      req.Decision,
		Remarks:       remarks,
	}
	if err := s.repo.ApplyDecision(ctx, repository.UpdateDecisionParams{
		ID:           app.ID,
		Stage:        outcome.NextStage,
		Status:       outcome.Status,
		FinalOutcome: outcome.FinalOutcome,
	}, review); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "application was decided concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply decision")
	}

	app.CurrentStage = outcome.NextStage
	app.Status = outcome.Status
	app.FinalOutcome = outcome.FinalOutcome

	if outcome.IsTerminal {
		s.onClosed(ctx, app)
	}
	if s.observer != nil {
		s.observer.RecordDecision(review.Stage, review.Decision)
	}
	s.invalidateQueues(ctx)
	s.emitAudit(ctx, actor.UserID, models.AuditActionApplicationDecision, app.ID, review)
	return &DecisionResult{Review: review, Application: app}, nil
}

// DecisionResult carries the appended review together with the post-decision
// application state.
type DecisionResult struct {
	Review      *models.Review      `json:"review"`
	Application *models.Application `json:"application"`
}

// resolveReviewer returns the user ID the review is recorded under. Admins
// may record a decision on behalf of another reviewer by naming them in the
// request; everyone else always decides as themselves.
func (s *ApplicationService) resolveReviewer(ctx context.Context, req dto.ReviewApplicationRequest, actor *models.JWTClaims) (string, error) {
	if req.ReviewerID == "" || req.ReviewerID == actor.UserID {
		return actor.UserID, nil
	}
	if actor.Role != models.RoleAdmin {
		return "", appErrors.Clone(appErrors.ErrForbidden, "only admins may record a decision for another reviewer")
	}
	if s.users != nil {
		if _, err := s.users.FindByID(ctx, req.ReviewerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.Clone(appErrors.ErrNotFound, "reviewer not found")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve reviewer")
		}
	}
	return req.ReviewerID, nil
}

// authorizeReviewer enforces the two-tier check: the actor's role must be
// allowed to decide at the application's current stage, and for non-admin
// actors the assignment of record must match.
func (s *ApplicationService) authorizeReviewer(ctx context.Context, def workflow.Definition, app *models.Application, actor *models.JWTClaims) error {
	if !def.IsRoleAuthorized(app.CurrentStage, actor.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s may not decide at stage %s", actor.Role, app.CurrentStage))
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}

	switch app.CurrentStage {
	case models.StageSupervisor:
		scholar, err := s.scholars.GetScholar(ctx, app.ScholarID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholar for authorization")
		}
		employee, err := s.scholars.GetEmployeeByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrForbidden, "no employee profile linked to this account")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee profile")
		}
		if !matchesSupervisor(scholar, employee.EmployeeID) {
			return appErrors.Clone(appErrors.ErrForbidden, "reviewer is not the scholar's supervisor of record")
		}
	case models.StageDRC, models.StageIRC, models.StageDoAA:
		members, err := s.scholars.ListRACMembers(ctx, app.ScholarID, app.CurrentStage)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committee assignments")
		}
		// Stages without explicit committee assignments fall back to the
		// role check alone.
		if len(members) == 0 {
			return nil
		}
		employee, err := s.scholars.GetEmployeeByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrForbidden, "no employee profile linked to this account")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee profile")
		}
		for _, m := range members {
			if m.EmployeeID == employee.EmployeeID {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrForbidden, "reviewer is not assigned to this scholar's committee")
	}
	return nil
}

func matchesSupervisor(scholar *models.Scholar, employeeID string) bool {
	if scholar.SupervisorID != nil && *scholar.SupervisorID == employeeID {
		return true
	}
	if scholar.CoSupervisorID != nil && *scholar.CoSupervisorID == employeeID {
		return true
	}
	return false
}

// onClosed runs best-effort side effects after an application reaches a
// terminal state. Failures here never roll back the decision.
func (s *ApplicationService) onClosed(ctx context.Context, app *models.Application) {
	if app.FinalOutcome != nil && *app.FinalOutcome == models.ApplicationStatusApproved {
		if applier, ok := s.appliers[app.Type]; ok {
			if err := applier.Apply(ctx, app); err != nil {
				s.logger.Warn("approved change application failed",
					zap.String("application_id", app.ID),
					zap.String("type", string(app.Type)),
					zap.Error(err))
			}
		}
	}
	if s.progress != nil {
		if err := s.progress.RecordCompletedReview(ctx, app.ScholarID); err != nil {
			s.logger.Warn("progress counter update failed",
				zap.String("scholar_id", app.ScholarID),
				zap.Error(err))
		}
	}
}

func (s *ApplicationService) invalidateQueues(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "portal:queue:*"); err != nil {
		s.logger.Warn("review queue cache invalidation failed", zap.Error(err))
	}
}

func (s *ApplicationService) emitAudit(ctx context.Context, userID, action, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	values, err := json.Marshal(payload)
	if err != nil {
		values = nil
	}
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "application",
		ResourceID: &resourceID,
		NewValues:  values,
		IPAddress:  "system",
		UserAgent:  "application-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
