package workflow

import (
	"fmt"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

// Definition describes the ordered approval sequence for one application
// type. The stage list order is authoritative: it defines advancement order
// and its last element is the terminal stage.
type Definition struct {
	ID            string
	Stages        []models.WorkflowStage
	StageRoles    map[models.WorkflowStage][]models.UserRole
	TerminalStage models.WorkflowStage
}

// Contains reports whether the stage belongs to this definition.
func (d Definition) Contains(stage models.WorkflowStage) bool {
	return d.IndexOf(stage) >= 0
}

// IndexOf returns the position of stage in the ordered list, or -1.
func (d Definition) IndexOf(stage models.WorkflowStage) int {
	for i, s := range d.Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

// First returns the initial stage of the sequence.
func (d Definition) First() models.WorkflowStage {
	return d.Stages[0]
}

// IsRoleAuthorized reports whether the role may decide at the given stage.
// The administrative override role is always authorized. Nobody decides at
// the terminal stage: it is an absorbing state.
func (d Definition) IsRoleAuthorized(stage models.WorkflowStage, role models.UserRole) bool {
	if stage == d.TerminalStage {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	for _, allowed := range d.StageRoles[stage] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Registry resolves workflow definitions per application type. It is
// configuration, not state: read-only after construction.
type Registry struct {
	definitions map[models.ApplicationType]Definition
}

var defaultDefinition = Definition{
	ID: "phd-approval",
	Stages: []models.WorkflowStage{
		models.StageSupervisor,
		models.StageDRC,
		models.StageIRC,
		models.StageDoAA,
		models.StageCompleted,
	},
	TerminalStage: models.StageCompleted,
	StageRoles: map[models.WorkflowStage][]models.UserRole{
		models.StageSupervisor: {models.RoleSupervisor},
		models.StageDRC:        {models.RoleDRC},
		models.StageIRC:        {models.RoleIRC},
		models.StageDoAA:       {models.RoleDoAA},
		models.StageCompleted:  {},
	},
}

// NewRegistry builds the registry with the standard per-type definitions.
// Every current application type shares the five-stage approval chain, but
// the mapping is keyed by type so a future type can carry its own sequence.
func NewRegistry() *Registry {
	defs := make(map[models.ApplicationType]Definition, len(models.ApplicationTypes()))
	for _, t := range models.ApplicationTypes() {
		defs[t] = defaultDefinition
	}
	return &Registry{definitions: defs}
}

// Definition returns the workflow definition for the application type.
// An unknown type is a configuration error, not a user-facing failure.
func (r *Registry) Definition(appType models.ApplicationType) (Definition, error) {
	def, ok := r.definitions[appType]
	if !ok {
		return Definition{}, appErrors.Wrap(
			fmt.Errorf("no workflow definition for application type %q", appType),
			appErrors.ErrConfiguration.Code,
			appErrors.ErrConfiguration.Status,
			"workflow definition missing",
		)
	}
	return def, nil
}

// Validate checks every registered definition for structural soundness.
// Called once at startup so deployment mistakes fail loudly.
func (r *Registry) Validate() error {
	for appType, def := range r.definitions {
		if len(def.Stages) < 2 {
			return fmt.Errorf("workflow %q for type %q needs at least one review stage and a terminal stage", def.ID, appType)
		}
		if def.Stages[len(def.Stages)-1] != def.TerminalStage {
			return fmt.Errorf("workflow %q for type %q: terminal stage %q is not the last stage", def.ID, appType, def.TerminalStage)
		}
		for stage := range def.StageRoles {
			if !def.Contains(stage) {
				return fmt.Errorf("workflow %q for type %q: role mapping references unknown stage %q", def.ID, appType, stage)
			}
		}
	}
	return nil
}
