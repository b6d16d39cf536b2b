package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

type supervisorUpdater interface {
	SetSupervisor(ctx context.Context, scholarID, supervisorEmployeeID string) error
}

// SupervisorChangeApplier swaps the scholar's supervisor of record when a
// supervisor-change application is finally approved.
type SupervisorChangeApplier struct {
	scholars supervisorUpdater
	logger   *zap.Logger
}

// NewSupervisorChangeApplier constructs the applier.
func NewSupervisorChangeApplier(scholars supervisorUpdater, logger *zap.Logger) *SupervisorChangeApplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupervisorChangeApplier{scholars: scholars, logger: logger}
}

// Apply implements ChangeApplier.
func (a *SupervisorChangeApplier) Apply(ctx context.Context, app *models.Application) error {
	details := app.Details.SupervisorChange
	if details == nil {
		return fmt.Errorf("application %s has no supervisor change details", app.ID)
	}
	if details.ProposedSupervisorID == "" {
		return fmt.Errorf("application %s names no proposed supervisor", app.ID)
	}
	if err := a.scholars.SetSupervisor(ctx, app.ScholarID, details.ProposedSupervisorID); err != nil {
		return fmt.Errorf("set supervisor for scholar %s: %w", app.ScholarID, err)
	}
	a.logger.Info("supervisor of record updated",
		zap.String("scholar_id", app.ScholarID),
		zap.String("supervisor_id", details.ProposedSupervisorID))
	return nil
}

// DefaultChangeAppliers wires the applier map used by the application
// service. Types without structured side effects record the approval only.
func DefaultChangeAppliers(scholars supervisorUpdater, logger *zap.Logger) map[models.ApplicationType]ChangeApplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	logOnly := func(event string) ChangeApplier {
		return ChangeApplierFunc(func(_ context.Context, app *models.Application) error {
			logger.Info(event, zap.String("application_id", app.ID), zap.String("scholar_id", app.ScholarID))
			return nil
		})
	}
	return map[models.ApplicationType]ChangeApplier{
		models.ApplicationTypeSupervisorChange: NewSupervisorChangeApplier(scholars, logger),
		models.ApplicationTypeExtension:        logOnly("registration extension approved"),
		models.ApplicationTypeReRegistration:   logOnly("re-registration approved"),
		models.ApplicationTypePreTalk:          logOnly("pre-submission talk approved"),
	}
}
