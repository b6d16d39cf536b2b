package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/dto"
	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/repository"
	"github.com/Poojitha-916/DRC-capstone/internal/workflow"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type applicationRepoStub struct {
	apps  map[string]*models.Application
	trail *reviewRepoStub

	// loseRace simulates another decision closing the application between
	// the Pending read and the guarded update.
	loseRace bool
}

func newApplicationRepoStub() *applicationRepoStub {
	return &applicationRepoStub{apps: make(map[string]*models.Application)}
}

func (s *applicationRepoStub) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = "app-" + app.ScholarID
	}
	stored := *app
	s.apps[app.ID] = &stored
	return nil
}

func (s *applicationRepoStub) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := s.apps[id]; ok {
		copy := *app
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationRepoStub) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	result := make([]models.Application, 0, len(s.apps))
	for _, app := range s.apps {
		if filter.ScholarID != "" && app.ScholarID != filter.ScholarID {
			continue
		}
		result = append(result, *app)
	}
	return result, nil
}

func (s *applicationRepoStub) ListByStage(ctx context.Context, stage models.WorkflowStage) ([]models.Application, error) {
	result := make([]models.Application, 0)
	for _, app := range s.apps {
		if app.CurrentStage == stage && app.Status == models.ApplicationStatusPending {
			result = append(result, *app)
		}
	}
	return result, nil
}

// ApplyDecision mirrors the transactional repository: the review is
// persisted only when the guarded update succeeds.
func (s *applicationRepoStub) ApplyDecision(ctx context.Context, params repository.UpdateDecisionParams, review *models.Review) error {
	if s.loseRace {
		return sql.ErrNoRows
	}
	app, ok := s.apps[params.ID]
	if !ok || app.Status != models.ApplicationStatusPending {
		return sql.ErrNoRows
	}
	app.CurrentStage = params.Stage
	app.Status = params.Status
	app.FinalOutcome = params.FinalOutcome

	if review.ID == "" {
		review.ID = "rev"
	}
	if s.trail != nil {
		s.trail.reviews = append(s.trail.reviews, *review)
	}
	return nil
}

type reviewRepoStub struct {
	reviews []models.Review
}

func (s *reviewRepoStub) ListForApplication(ctx context.Context, applicationID string) ([]models.Review, error) {
	result := make([]models.Review, 0)
	for _, r := range s.reviews {
		if r.ApplicationID == applicationID {
			result = append(result, r)
		}
	}
	return result, nil
}

type assignmentStub struct {
	scholars   map[string]*models.Scholar
	byUser     map[string]*models.Scholar
	employees  map[string]*models.Employee
	racMembers map[models.WorkflowStage][]models.RACMember
}

func newAssignmentStub() *assignmentStub {
	return &assignmentStub{
		scholars:   make(map[string]*models.Scholar),
		byUser:     make(map[string]*models.Scholar),
		employees:  make(map[string]*models.Employee),
		racMembers: make(map[models.WorkflowStage][]models.RACMember),
	}
}

func (s *assignmentStub) GetScholar(ctx context.Context, scholarID string) (*models.Scholar, error) {
	if scholar, ok := s.scholars[scholarID]; ok {
		return scholar, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStub) GetScholarByUserID(ctx context.Context, userID string) (*models.Scholar, error) {
	if scholar, ok := s.byUser[userID]; ok {
		return scholar, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStub) GetEmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	if employee, ok := s.employees[userID]; ok {
		return employee, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStub) ListRACMembers(ctx context.Context, scholarID string, role models.WorkflowStage) ([]models.RACMember, error) {
	return s.racMembers[role], nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type supervisorUpdateStub struct {
	calls [][2]string
}

func (s *supervisorUpdateStub) SetSupervisor(ctx context.Context, scholarID, supervisorEmployeeID string) error {
	s.calls = append(s.calls, [2]string{scholarID, supervisorEmployeeID})
	return nil
}

func newLifecycleFixture() (*ApplicationService, *applicationRepoStub, *reviewRepoStub, *assignmentStub, *auditStub) {
	repo := newApplicationRepoStub()
	reviews := &reviewRepoStub{}
	repo.trail = reviews
	assignments := newAssignmentStub()
	audit := &auditStub{}
	svc := NewApplicationService(repo, reviews, assignments, workflow.NewRegistry(), audit, nil)
	return svc, repo, reviews, assignments, audit
}

func seedScholar(assignments *assignmentStub, scholarID, userID, supervisorEmpID string) {
	scholar := &models.Scholar{
		ScholarID:    scholarID,
		UserID:       userID,
		Status:       models.ScholarStatusActive,
		SupervisorID: &supervisorEmpID,
	}
	assignments.scholars[scholarID] = scholar
	assignments.byUser[userID] = scholar
}

func extensionRequest() dto.CreateApplicationRequest {
	return dto.CreateApplicationRequest{
		Type: models.ApplicationTypeExtension,
		Details: models.ApplicationDetails{
			Extension: &models.ExtensionDetails{
				RegistrationDate:  "2021-07-01",
				ExtensionDuration: "6 months",
				Reason:            "additional experiments",
			},
		},
	}
}

func scholarActor(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleScholar}
}

func actorWithRole(userID string, role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: role}
}

func TestApplicationSubmitStartsPendingAtFirstStage(t *testing.T) {
	svc, _, _, assignments, audit := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")

	app, err := svc.Submit(context.Background(), extensionRequest(), scholarActor("user-scholar"))
	require.NoError(t, err)
	require.Equal(t, models.ApplicationStatusPending, app.Status)
	require.Equal(t, models.StageSupervisor, app.CurrentStage)
	require.Nil(t, app.FinalOutcome)
	require.Len(t, audit.logs, 1)
}

func TestApplicationSubmitRejectsNonScholar(t *testing.T) {
	svc, _, _, _, _ := newLifecycleFixture()

	_, err := svc.Submit(context.Background(), extensionRequest(), actorWithRole("user-drc", models.RoleDRC))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestApplicationSubmitRejectsMismatchedDetails(t *testing.T) {
	svc, _, _, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")

	req := dto.CreateApplicationRequest{
		Type: models.ApplicationTypeExtension,
		Details: models.ApplicationDetails{
			PreTalk: &models.PreTalkDetails{ProposedDate: "2026-10-01"},
		},
	}
	_, err := svc.Submit(context.Background(), req, scholarActor("user-scholar"))
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func seedPendingApplication(repo *applicationRepoStub, id string, stage models.WorkflowStage) *models.Application {
	app := &models.Application{
		ID:           id,
		ScholarID:    "scholar-1",
		Type:         models.ApplicationTypeExtension,
		Status:       models.ApplicationStatusPending,
		CurrentStage: stage,
		Details: models.ApplicationDetails{
			Extension: &models.ExtensionDetails{Reason: "more time"},
		},
	}
	repo.apps[id] = app
	return app
}

func TestSubmitDecisionApprovalAdvancesOneStage(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	assignments.employees["user-sup"] = &models.Employee{EmployeeID: "EMP-SUP", UserID: "user-sup"}
	seedPendingApplication(repo, "app-1", models.StageSupervisor)

	result, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "endorsed",
	}, actorWithRole("user-sup", models.RoleSupervisor))
	require.NoError(t, err)
	app := result.Application
	require.Equal(t, models.StageDRC, app.CurrentStage)
	require.Equal(t, models.ApplicationStatusPending, app.Status)
	require.Nil(t, app.FinalOutcome)

	// The review carries the stage the decision was made at.
	require.Len(t, reviews.reviews, 1)
	require.Equal(t, models.StageSupervisor, result.Review.Stage)
	require.Equal(t, models.DecisionApproved, result.Review.Decision)
}

func TestSubmitDecisionRejectionIsFinalFromAnyStage(t *testing.T) {
	svc, repo, _, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	assignments.employees["user-irc"] = &models.Employee{EmployeeID: "EMP-IRC", UserID: "user-irc"}
	seedPendingApplication(repo, "app-1", models.StageIRC)

	result, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionRejected,
		Remarks:  "insufficient progress",
	}, actorWithRole("user-irc", models.RoleIRC))
	require.NoError(t, err)
	app := result.Application
	require.Equal(t, models.ApplicationStatusRejected, app.Status)
	require.Equal(t, models.StageCompleted, app.CurrentStage)
	require.NotNil(t, app.FinalOutcome)
	require.Equal(t, models.ApplicationStatusRejected, *app.FinalOutcome)
}

func TestSubmitDecisionOnClosedApplicationFails(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	rejected := models.ApplicationStatusRejected
	repo.apps["app-1"] = &models.Application{
		ID:           "app-1",
		ScholarID:    "scholar-1",
		Type:         models.ApplicationTypeExtension,
		Status:       models.ApplicationStatusRejected,
		CurrentStage: models.StageCompleted,
		FinalOutcome: &rejected,
	}

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "revisit",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrInvalidState)

	// The failed attempt leaves the record and trail untouched.
	require.Empty(t, reviews.reviews)
	require.Equal(t, models.ApplicationStatusRejected, repo.apps["app-1"].Status)
	require.Equal(t, models.ApplicationStatusRejected, *repo.apps["app-1"].FinalOutcome)
}

func TestSubmitDecisionMissingApplication(t *testing.T) {
	svc, _, _, _, _ := newLifecycleFixture()

	_, err := svc.SubmitDecision(context.Background(), "missing", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "ok",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSubmitDecisionRejectsBlankRemarks(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDRC)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "   \t ",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, reviews.reviews)
	require.Equal(t, models.StageDRC, repo.apps["app-1"].CurrentStage)
}

func TestSubmitDecisionForbidsWrongRole(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDRC)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "fine by me",
	}, actorWithRole("user-sup", models.RoleSupervisor))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	require.Empty(t, reviews.reviews)
	require.Equal(t, models.ApplicationStatusPending, repo.apps["app-1"].Status)
}

func TestSubmitDecisionForbidsUnassignedSupervisor(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	assignments.employees["user-other"] = &models.Employee{EmployeeID: "EMP-OTHER", UserID: "user-other"}
	seedPendingApplication(repo, "app-1", models.StageSupervisor)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "approve",
	}, actorWithRole("user-other", models.RoleSupervisor))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	require.Empty(t, reviews.reviews)
}

func TestSubmitDecisionCommitteeAssignmentCheck(t *testing.T) {
	svc, repo, _, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	assignments.employees["user-drc"] = &models.Employee{EmployeeID: "EMP-DRC", UserID: "user-drc"}
	assignments.employees["user-outsider"] = &models.Employee{EmployeeID: "EMP-OUT", UserID: "user-outsider"}
	assignments.racMembers[models.StageDRC] = []models.RACMember{
		{ScholarID: "scholar-1", EmployeeID: "EMP-DRC", MemberRole: models.StageDRC},
	}
	seedPendingApplication(repo, "app-1", models.StageDRC)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "approve",
	}, actorWithRole("user-outsider", models.RoleDRC))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	result, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "methodology is sound",
	}, actorWithRole("user-drc", models.RoleDRC))
	require.NoError(t, err)
	require.Equal(t, models.StageIRC, result.Application.CurrentStage)
}

func TestSubmitDecisionAdminOverridesAtAnyStage(t *testing.T) {
	svc, repo, _, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDoAA)

	result, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "administrative approval",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.NoError(t, err)
	require.Equal(t, models.StageCompleted, result.Application.CurrentStage)
	require.Equal(t, models.ApplicationStatusApproved, result.Application.Status)
}

type userDirectoryStub struct {
	users map[string]*models.User
}

func (s *userDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func TestSubmitDecisionAdminRecordsForAnotherReviewer(t *testing.T) {
	repo := newApplicationRepoStub()
	reviews := &reviewRepoStub{}
	repo.trail = reviews
	assignments := newAssignmentStub()
	users := &userDirectoryStub{users: map[string]*models.User{
		"user-doaa": {ID: "user-doaa", Role: models.RoleDoAA},
	}}
	svc := NewApplicationService(repo, reviews, assignments, workflow.NewRegistry(), &auditStub{}, nil,
		WithUserDirectory(users))

	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDoAA)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision:   models.DecisionApproved,
		Remarks:    "recorded from committee minutes",
		ReviewerID: "user-doaa",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, reviews.reviews, 1)
	require.Equal(t, "user-doaa", reviews.reviews[0].ReviewerID)
}

func TestSubmitDecisionOverrideRequiresAdmin(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	assignments.employees["user-drc"] = &models.Employee{EmployeeID: "EMP-DRC", UserID: "user-drc"}
	seedPendingApplication(repo, "app-1", models.StageDRC)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision:   models.DecisionApproved,
		Remarks:    "approve",
		ReviewerID: "user-someone-else",
	}, actorWithRole("user-drc", models.RoleDRC))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	require.Empty(t, reviews.reviews)
}

func TestSubmitDecisionOverrideUnknownReviewer(t *testing.T) {
	repo := newApplicationRepoStub()
	assignments := newAssignmentStub()
	svc := NewApplicationService(repo, &reviewRepoStub{}, assignments, workflow.NewRegistry(), &auditStub{}, nil,
		WithUserDirectory(&userDirectoryStub{users: map[string]*models.User{}}))

	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDoAA)

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision:   models.DecisionApproved,
		Remarks:    "minutes",
		ReviewerID: "user-ghost",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSubmitDecisionRaceLoserLeavesNoReview(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDRC)

	// Another reviewer closes the application between the Pending read and
	// the guarded update. The loser must leave no trace in the trail.
	repo.loseRace = true

	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "approve",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrInvalidState)
	require.Empty(t, reviews.reviews)
}

func TestSubmitDecisionReviewerCheckedBeforeRemarks(t *testing.T) {
	repo := newApplicationRepoStub()
	assignments := newAssignmentStub()
	svc := NewApplicationService(repo, &reviewRepoStub{}, assignments, workflow.NewRegistry(), &auditStub{}, nil,
		WithUserDirectory(&userDirectoryStub{users: map[string]*models.User{}}))

	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDoAA)

	// An unknown on-behalf-of reviewer fails before remarks validation.
	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision:   models.DecisionApproved,
		Remarks:    "   ",
		ReviewerID: "user-ghost",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSubmitDecisionConcurrentLoserFails(t *testing.T) {
	svc, repo, _, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageDRC)

	// First decision wins.
	_, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionRejected,
		Remarks:  "insufficient progress",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.NoError(t, err)

	// The second attempt hits the closed record.
	_, err = svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "approve",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrInvalidState)
}

func TestExtensionApplicationFullApprovalChain(t *testing.T) {
	svc, repo, reviews, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	assignments.employees["user-sup"] = &models.Employee{EmployeeID: "EMP-SUP", UserID: "user-sup"}
	assignments.employees["user-drc"] = &models.Employee{EmployeeID: "EMP-DRC", UserID: "user-drc"}
	assignments.employees["user-irc"] = &models.Employee{EmployeeID: "EMP-IRC", UserID: "user-irc"}
	assignments.employees["user-doaa"] = &models.Employee{EmployeeID: "EMP-DOAA", UserID: "user-doaa"}

	submitted, err := svc.Submit(context.Background(), extensionRequest(), scholarActor("user-scholar"))
	require.NoError(t, err)

	chain := []struct {
		userID string
		role   models.UserRole
		stage  models.WorkflowStage
	}{
		{"user-sup", models.RoleSupervisor, models.StageSupervisor},
		{"user-drc", models.RoleDRC, models.StageDRC},
		{"user-irc", models.RoleIRC, models.StageIRC},
		{"user-doaa", models.RoleDoAA, models.StageDoAA},
	}
	for _, step := range chain {
		require.Equal(t, step.stage, repo.apps[submitted.ID].CurrentStage)
		_, err := svc.SubmitDecision(context.Background(), submitted.ID, dto.ReviewApplicationRequest{
			Decision: models.DecisionApproved,
			Remarks:  "approved at " + string(step.stage),
		}, actorWithRole(step.userID, step.role))
		require.NoError(t, err)
	}

	final := repo.apps[submitted.ID]
	require.Equal(t, models.ApplicationStatusApproved, final.Status)
	require.Equal(t, models.StageCompleted, final.CurrentStage)
	require.NotNil(t, final.FinalOutcome)
	require.Equal(t, models.ApplicationStatusApproved, *final.FinalOutcome)
	require.Len(t, reviews.reviews, 4)
	for i, step := range chain {
		require.Equal(t, step.stage, reviews.reviews[i].Stage)
	}
}

func TestApprovedSupervisorChangeUpdatesAssignment(t *testing.T) {
	repo := newApplicationRepoStub()
	reviews := &reviewRepoStub{}
	repo.trail = reviews
	assignments := newAssignmentStub()
	updater := &supervisorUpdateStub{}
	svc := NewApplicationService(repo, reviews, assignments, workflow.NewRegistry(), &auditStub{}, nil,
		WithChangeAppliers(DefaultChangeAppliers(updater, nil)))

	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-OLD")
	repo.apps["app-1"] = &models.Application{
		ID:           "app-1",
		ScholarID:    "scholar-1",
		Type:         models.ApplicationTypeSupervisorChange,
		Status:       models.ApplicationStatusPending,
		CurrentStage: models.StageDoAA,
		Details: models.ApplicationDetails{
			SupervisorChange: &models.SupervisorChangeDetails{
				CurrentSupervisorID:  "EMP-OLD",
				ProposedSupervisorID: "EMP-NEW",
				Justification:        "research direction shift",
			},
		},
	}

	result, err := svc.SubmitDecision(context.Background(), "app-1", dto.ReviewApplicationRequest{
		Decision: models.DecisionApproved,
		Remarks:  "change endorsed",
	}, actorWithRole("user-admin", models.RoleAdmin))
	require.NoError(t, err)
	require.Equal(t, models.ApplicationStatusApproved, result.Application.Status)
	require.Len(t, updater.calls, 1)
	require.Equal(t, [2]string{"scholar-1", "EMP-NEW"}, updater.calls[0])
}

func TestApplicationGetScopesScholarToOwnRecords(t *testing.T) {
	svc, repo, _, assignments, _ := newLifecycleFixture()
	seedScholar(assignments, "scholar-1", "user-scholar", "EMP-SUP")
	seedScholar(assignments, "scholar-2", "user-other", "EMP-SUP")
	seedPendingApplication(repo, "app-1", models.StageSupervisor)

	_, err := svc.Get(context.Background(), "app-1", scholarActor("user-other"))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	got, err := svc.Get(context.Background(), "app-1", scholarActor("user-scholar"))
	require.NoError(t, err)
	require.Equal(t, "app-1", got.Application.ID)
}

func TestPendingQueueForbidsScholars(t *testing.T) {
	svc, _, _, _, _ := newLifecycleFixture()

	_, err := svc.PendingQueue(context.Background(), models.StageDRC, scholarActor("user-scholar"))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}
