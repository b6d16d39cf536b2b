package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

func TestRegistryReturnsDefinitionForEveryKnownType(t *testing.T) {
	registry := NewRegistry()
	for _, appType := range models.ApplicationTypes() {
		def, err := registry.Definition(appType)
		require.NoError(t, err)
		require.Equal(t, models.StageSupervisor, def.First())
		require.Equal(t, models.StageCompleted, def.TerminalStage)
		require.Equal(t, def.TerminalStage, def.Stages[len(def.Stages)-1])
	}
}

func TestRegistryUnknownTypeIsConfigurationError(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Definition(models.ApplicationType("Sabbatical"))
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrConfiguration))
}

func TestRegistryValidate(t *testing.T) {
	require.NoError(t, NewRegistry().Validate())

	broken := &Registry{definitions: map[models.ApplicationType]Definition{
		models.ApplicationTypeExtension: {
			ID:            "broken",
			Stages:        []models.WorkflowStage{models.StageDRC, models.StageCompleted},
			TerminalStage: models.StageDRC,
		},
	}}
	require.Error(t, broken.Validate())
}

func TestIsRoleAuthorizedStageRoles(t *testing.T) {
	def := defaultDefinition

	require.True(t, def.IsRoleAuthorized(models.StageSupervisor, models.RoleSupervisor))
	require.True(t, def.IsRoleAuthorized(models.StageDRC, models.RoleDRC))
	require.True(t, def.IsRoleAuthorized(models.StageIRC, models.RoleIRC))
	require.True(t, def.IsRoleAuthorized(models.StageDoAA, models.RoleDoAA))

	require.False(t, def.IsRoleAuthorized(models.StageDRC, models.RoleIRC))
	require.False(t, def.IsRoleAuthorized(models.StageSupervisor, models.RoleScholar))
}

func TestIsRoleAuthorizedAdminOverride(t *testing.T) {
	def := defaultDefinition
	for _, stage := range def.Stages {
		if stage == def.TerminalStage {
			continue
		}
		require.True(t, def.IsRoleAuthorized(stage, models.RoleAdmin), "admin must be authorized at stage %s", stage)
	}
}

func TestIsRoleAuthorizedTerminalStageIsAbsorbing(t *testing.T) {
	def := defaultDefinition
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleSupervisor, models.RoleDRC, models.RoleIRC, models.RoleDoAA} {
		require.False(t, def.IsRoleAuthorized(def.TerminalStage, role))
	}
}
