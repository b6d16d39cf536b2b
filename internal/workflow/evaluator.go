package workflow

import "github.com/Poojitha-916/DRC-capstone/internal/models"

// Outcome is the computed result of applying one decision to a stage.
type Outcome struct {
	NextStage    models.WorkflowStage
	Status       models.ApplicationStatus
	FinalOutcome *models.ApplicationStatus
	IsTerminal   bool
}

// Evaluate computes the transition for a decision at the current stage.
//
// A rejection terminates the process immediately from any stage; there is no
// appeal path. An approval advances exactly one position in the stage list,
// clamped at the last index. Callers must not pass the terminal stage as the
// current stage; over all other stages the function is total and has no
// error path.
func Evaluate(def Definition, currentStage models.WorkflowStage, decision models.ReviewDecision) Outcome {
	if decision == models.DecisionRejected {
		rejected := models.ApplicationStatusRejected
		return Outcome{
			NextStage:    def.TerminalStage,
			Status:       models.ApplicationStatusRejected,
			FinalOutcome: &rejected,
			IsTerminal:   true,
		}
	}

	next := def.IndexOf(currentStage) + 1
	if last := len(def.Stages) - 1; next > last {
		next = last
	}
	nextStage := def.Stages[next]

	if nextStage == def.TerminalStage {
		approved := models.ApplicationStatusApproved
		return Outcome{
			NextStage:    nextStage,
			Status:       models.ApplicationStatusApproved,
			FinalOutcome: &approved,
			IsTerminal:   true,
		}
	}

	return Outcome{
		NextStage: nextStage,
		Status:    models.ApplicationStatusPending,
	}
}
