package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
)

func threeStageDefinition() Definition {
	return Definition{
		ID:            "three-stage",
		Stages:        []models.WorkflowStage{models.StageDRC, models.StageDoAA, models.StageCompleted},
		TerminalStage: models.StageCompleted,
		StageRoles: map[models.WorkflowStage][]models.UserRole{
			models.StageDRC:  {models.RoleDRC},
			models.StageDoAA: {models.RoleDoAA},
		},
	}
}

func TestEvaluateApprovalAdvancesOneStage(t *testing.T) {
	def := threeStageDefinition()

	outcome := Evaluate(def, models.StageDRC, models.DecisionApproved)
	require.Equal(t, models.StageDoAA, outcome.NextStage)
	require.Equal(t, models.ApplicationStatusPending, outcome.Status)
	require.Nil(t, outcome.FinalOutcome)
	require.False(t, outcome.IsTerminal)
}

func TestEvaluateApprovalAtLastReviewStageIsTerminal(t *testing.T) {
	def := threeStageDefinition()

	outcome := Evaluate(def, models.StageDoAA, models.DecisionApproved)
	require.Equal(t, models.StageCompleted, outcome.NextStage)
	require.Equal(t, models.ApplicationStatusApproved, outcome.Status)
	require.NotNil(t, outcome.FinalOutcome)
	require.Equal(t, models.ApplicationStatusApproved, *outcome.FinalOutcome)
	require.True(t, outcome.IsTerminal)
}

func TestEvaluateRejectionIsFinalAtAnyStage(t *testing.T) {
	def := defaultDefinition
	for _, stage := range def.Stages[:len(def.Stages)-1] {
		outcome := Evaluate(def, stage, models.DecisionRejected)
		require.Equal(t, def.TerminalStage, outcome.NextStage, "stage %s", stage)
		require.Equal(t, models.ApplicationStatusRejected, outcome.Status)
		require.NotNil(t, outcome.FinalOutcome)
		require.Equal(t, models.ApplicationStatusRejected, *outcome.FinalOutcome)
		require.True(t, outcome.IsTerminal)
	}
}

func TestEvaluateFullApprovalChain(t *testing.T) {
	def := defaultDefinition
	stage := def.First()
	steps := 0
	for {
		outcome := Evaluate(def, stage, models.DecisionApproved)
		steps++
		require.Equal(t, def.IndexOf(stage)+1, def.IndexOf(outcome.NextStage), "approval must advance exactly one stage")
		if outcome.IsTerminal {
			require.Equal(t, models.ApplicationStatusApproved, outcome.Status)
			break
		}
		require.Equal(t, models.ApplicationStatusPending, outcome.Status)
		require.Nil(t, outcome.FinalOutcome)
		stage = outcome.NextStage
	}
	require.Equal(t, len(def.Stages)-1, steps)
}

func TestEvaluateClampsAtEndOfStageList(t *testing.T) {
	def := threeStageDefinition()

	// Defensive clamp only: callers reject terminal-stage input up front.
	outcome := Evaluate(def, models.StageCompleted, models.DecisionApproved)
	require.Equal(t, models.StageCompleted, outcome.NextStage)
	require.True(t, outcome.IsTerminal)
}
