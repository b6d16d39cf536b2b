package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

type provisionUserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type provisionApplicationStore interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	Create(ctx context.Context, app *models.Application) error
}

type provisionProgressStore interface {
	GetByScholarID(ctx context.Context, scholarID string) (*models.ResearchProgress, error)
	Upsert(ctx context.Context, progress *models.ResearchProgress) error
}

type provisionScholarStore interface {
	GetScholar(ctx context.Context, scholarID string) (*models.Scholar, error)
	GetEmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error)
	CreateScholar(ctx context.Context, scholar *models.Scholar) error
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	ListRACMembers(ctx context.Context, scholarID string, role models.WorkflowStage) ([]models.RACMember, error)
	AssignRACMember(ctx context.Context, member *models.RACMember) error
}

// seedAccount describes one default portal principal.
type seedAccount struct {
	Email      string
	FullName   string
	Role       models.UserRole
	Phone      string
	ScholarID  string
	Batch      string
	Department string
	EmployeeID string
}

var defaultAccounts = []seedAccount{
	{Email: "thirupathi@gitam.in", FullName: "Thirupathi Kumar", Role: models.RoleScholar, Phone: "9876543210", ScholarID: "PHD2020001", Batch: "2020-2021", Department: "Computer Science and Engineering"},
	{Email: "priya.reddy@gitam.in", FullName: "Priya Reddy", Role: models.RoleScholar, Phone: "9876543220", ScholarID: "PHD2021002", Batch: "2021-2022", Department: "Electronics and Communication"},
	{Email: "ramesh.kumar@gitam.edu", FullName: "Dr. Ramesh Kumar", Role: models.RoleSupervisor, Phone: "9876543230", EmployeeID: "EMP-SUP-001"},
	{Email: "lakshmi.drc@gitam.edu", FullName: "Dr. Lakshmi Narayana", Role: models.RoleDRC, Phone: "9876543240", EmployeeID: "EMP-DRC-001"},
	{Email: "venkatesh.irc@gitam.edu", FullName: "Dr. Venkatesh Rao", Role: models.RoleIRC, Phone: "9876543250", EmployeeID: "EMP-IRC-001"},
	{Email: "srinivas.doaa@gitam.edu", FullName: "Prof. Srinivas Reddy", Role: models.RoleDoAA, Phone: "9876543260", EmployeeID: "EMP-DOAA-001"},
	{Email: "admin@gitam.edu", FullName: "Portal Administrator", Role: models.RoleAdmin, Phone: "9876543270"},
}

// ProvisionService seeds default accounts, scholar profiles, and committee
// assignments. Every step is an upsert, so repeated runs are no-ops.
type ProvisionService struct {
	users        provisionUserStore
	scholars     provisionScholarStore
	applications provisionApplicationStore
	progress     provisionProgressStore
	password     string
	logger       *zap.Logger
}

// ProvisionOption configures optional seed data.
type ProvisionOption func(*ProvisionService)

// WithSampleApplication seeds one pending extension application for the
// first scholar when that scholar has no applications yet.
func WithSampleApplication(apps provisionApplicationStore) ProvisionOption {
	return func(s *ProvisionService) {
		s.applications = apps
	}
}

// WithSeedProgress initializes progress counters for the seeded scholars.
func WithSeedProgress(progress provisionProgressStore) ProvisionOption {
	return func(s *ProvisionService) {
		s.progress = progress
	}
}

// NewProvisionService constructs the service. password is the initial
// credential assigned to every seeded account.
func NewProvisionService(users provisionUserStore, scholars provisionScholarStore, password string, logger *zap.Logger, opts ...ProvisionOption) *ProvisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if password == "" {
		password = "password123"
	}
	s := &ProvisionService{users: users, scholars: scholars, password: password, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run provisions all default principals. It is safe to call on every boot.
func (s *ProvisionService) Run(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var supervisorEmpID string
	committee := make(map[models.WorkflowStage]string)

	for _, account := range defaultAccounts {
		user, err := s.ensureUser(ctx, account, string(hash))
		if err != nil {
			return err
		}
		switch account.Role {
		case models.RoleScholar:
			// Scholar profiles are linked after employees exist, below.
		case models.RoleAdmin:
		default:
			employee, err := s.ensureEmployee(ctx, user, account)
			if err != nil {
				return err
			}
			switch account.Role {
			case models.RoleSupervisor:
				supervisorEmpID = employee.EmployeeID
			case models.RoleDRC:
				committee[models.StageDRC] = employee.EmployeeID
			case models.RoleIRC:
				committee[models.StageIRC] = employee.EmployeeID
			case models.RoleDoAA:
				committee[models.StageDoAA] = employee.EmployeeID
			}
		}
	}

	for _, account := range defaultAccounts {
		if account.Role != models.RoleScholar {
			continue
		}
		user, err := s.users.FindByEmail(ctx, account.Email)
		if err != nil {
			return err
		}
		if err := s.ensureScholar(ctx, user, account, supervisorEmpID); err != nil {
			return err
		}
	}

	// The first seeded scholar carries a full committee, matching the
	// standard demonstration dataset.
	first := defaultAccounts[0]
	for stage, employeeID := range committee {
		if err := s.ensureCommitteeMember(ctx, first.ScholarID, employeeID, stage); err != nil {
			return err
		}
	}

	if err := s.seedSampleData(ctx, first.ScholarID); err != nil {
		return err
	}

	s.logger.Info("default accounts provisioned", zap.Int("accounts", len(defaultAccounts)))
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		Action:    models.AuditActionProvision,
		Resource:  "provision",
		NewValues: []byte(`{"status":"complete"}`),
		IPAddress: "system",
		UserAgent: "provision-service",
	}); err != nil {
		s.logger.Warn("failed to record provisioning audit log", zap.Error(err))
	}
	return nil
}

// seedSampleData gives the first scholar a pending extension application
// and baseline progress counters so a fresh install is demonstrable.
func (s *ProvisionService) seedSampleData(ctx context.Context, scholarID string) error {
	if s.applications != nil {
		existing, err := s.applications.List(ctx, models.ApplicationFilter{ScholarID: scholarID})
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			app := &models.Application{
				ScholarID:    scholarID,
				Type:         models.ApplicationTypeExtension,
				Status:       models.ApplicationStatusPending,
				CurrentStage: models.StageSupervisor,
				Details: models.ApplicationDetails{
					Extension: &models.ExtensionDetails{
						RegistrationDate:  "15-08-2020",
						DurationEligible:  "5 years",
						ExtensionDuration: "6 months",
						Reason:            "Pending journal publication required for thesis submission",
					},
				},
			}
			if err := s.applications.Create(ctx, app); err != nil {
				return err
			}
			s.logger.Info("seeded sample application", zap.String("scholar", scholarID))
		}
	}

	if s.progress != nil {
		for _, account := range defaultAccounts {
			if account.Role != models.RoleScholar {
				continue
			}
			if _, err := s.progress.GetByScholarID(ctx, account.ScholarID); err == nil {
				continue
			} else if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			if err := s.progress.Upsert(ctx, &models.ResearchProgress{
				ScholarID:      account.ScholarID,
				PendingReports: 1,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ProvisionService) ensureUser(ctx context.Context, account seedAccount, passwordHash string) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, account.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	user := &models.User{
		Email:        account.Email,
		PasswordHash: passwordHash,
		FullName:     account.FullName,
		Role:         account.Role,
		Phone:        account.Phone,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("seeded account", zap.String("email", account.Email), zap.String("role", string(account.Role)))
	return user, nil
}

func (s *ProvisionService) ensureEmployee(ctx context.Context, user *models.User, account seedAccount) (*models.Employee, error) {
	existing, err := s.scholars.GetEmployeeByUserID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	employee := &models.Employee{
		EmployeeID:  account.EmployeeID,
		UserID:      user.ID,
		Designation: account.FullName,
	}
	if err := s.scholars.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *ProvisionService) ensureScholar(ctx context.Context, user *models.User, account seedAccount, supervisorEmpID string) error {
	if _, err := s.scholars.GetScholar(ctx, account.ScholarID); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	scholar := &models.Scholar{
		ScholarID:  account.ScholarID,
		UserID:     user.ID,
		Batch:      account.Batch,
		Department: account.Department,
		Status:     models.ScholarStatusActive,
		Programme:  "PhD",
	}
	if supervisorEmpID != "" {
		scholar.SupervisorID = &supervisorEmpID
	}
	return s.scholars.CreateScholar(ctx, scholar)
}

func (s *ProvisionService) ensureCommitteeMember(ctx context.Context, scholarID, employeeID string, stage models.WorkflowStage) error {
	members, err := s.scholars.ListRACMembers(ctx, scholarID, stage)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.EmployeeID == employeeID {
			return nil
		}
	}
	return s.scholars.AssignRACMember(ctx, &models.RACMember{
		ScholarID:  scholarID,
		EmployeeID: employeeID,
		MemberRole: stage,
	})
}
