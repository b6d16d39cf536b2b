package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationType enumerates the closed set of administrative request types.
type ApplicationType string

const (
	ApplicationTypeExtension        ApplicationType = "Extension"
	ApplicationTypeReRegistration   ApplicationType = "Re-Registration"
	ApplicationTypeSupervisorChange ApplicationType = "Supervisor Change"
	ApplicationTypePreTalk          ApplicationType = "Pre-Talk"
)

// ApplicationTypes returns every accepted application type.
func ApplicationTypes() []ApplicationType {
	return []ApplicationType{
		ApplicationTypeExtension,
		ApplicationTypeReRegistration,
		ApplicationTypeSupervisorChange,
		ApplicationTypePreTalk,
	}
}

// ApplicationStatus captures the lifecycle state of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "Pending"
	ApplicationStatusApproved ApplicationStatus = "Approved"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

// WorkflowStage identifies one step of the approval sequence.
type WorkflowStage string

const (
	StageSupervisor WorkflowStage = "supervisor"
	StageDRC        WorkflowStage = "drc"
	StageIRC        WorkflowStage = "irc"
	StageDoAA       WorkflowStage = "doaa"
	StageCompleted  WorkflowStage = "completed"
)

// ReviewDecision is a reviewer's binary verdict.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
)

// Application represents one administrative request submitted by a scholar.
// Status is Pending exactly while FinalOutcome is nil; once the status leaves
// Pending it never returns. Only the application service mutates these fields.
type Application struct {
	ID             string             `db:"id" json:"id"`
	ScholarID      string             `db:"scholar_id" json:"scholarId"`
	Type           ApplicationType    `db:"type" json:"type"`
	Status         ApplicationStatus  `db:"status" json:"status"`
	CurrentStage   WorkflowStage      `db:"current_stage" json:"currentStage"`
	Details        ApplicationDetails `db:"details" json:"details"`
	FinalOutcome   *ApplicationStatus `db:"final_outcome" json:"finalOutcome,omitempty"`
	SubmissionDate time.Time          `db:"submission_date" json:"submissionDate"`
}

// ApplicationFilter constrains listing queries.
type ApplicationFilter struct {
	ScholarID string
	Status    []ApplicationStatus
	Stage     WorkflowStage
	Type      ApplicationType
	Limit     int
	Offset    int
}

// ApplicationDetails is a tagged union keyed by application type. Exactly one
// variant is populated, matching the owning application's type, so approved
// change dispatch can be handled exhaustively instead of reading an untyped
// field bag.
type ApplicationDetails struct {
	SupervisorChange *SupervisorChangeDetails `json:"supervisorChange,omitempty"`
	Extension        *ExtensionDetails        `json:"extension,omitempty"`
	PreTalk          *PreTalkDetails          `json:"preTalk,omitempty"`
	ReRegistration   *ReRegistrationDetails   `json:"reRegistration,omitempty"`
}

// SupervisorChangeDetails carries the proposed supervisor replacement.
type SupervisorChangeDetails struct {
	CurrentSupervisorID  string `json:"currentSupervisorId"`
	ProposedSupervisorID string `json:"proposedSupervisorId"`
	Justification        string `json:"justification"`
}

// ExtensionDetails carries a duration extension request.
type ExtensionDetails struct {
	RegistrationDate  string `json:"registrationDate"`
	DurationEligible  string `json:"durationEligible"`
	ExtensionDuration string `json:"extensionDuration"`
	Reason            string `json:"reason"`
	Timeline          string `json:"timeline"`
}

// PreTalkDetails carries a pre-submission talk request.
type PreTalkDetails struct {
	ProposedDate   string `json:"proposedDate"`
	ThesisTitle    string `json:"thesisTitle"`
	AbstractText   string `json:"abstract"`
	PublicationIDs string `json:"publications"`
}

// ReRegistrationDetails carries a re-registration request.
type ReRegistrationDetails struct {
	LapsedOn string `json:"lapsedOn"`
	Reason   string `json:"reason"`
}

// Variant returns the application type the populated variant corresponds to,
// or an error when the union is empty or ambiguous.
func (d ApplicationDetails) Variant() (ApplicationType, error) {
	var (
		found ApplicationType
		count int
	)
	if d.SupervisorChange != nil {
		found = ApplicationTypeSupervisorChange
		count++
	}
	if d.Extension != nil {
		found = ApplicationTypeExtension
		count++
	}
	if d.PreTalk != nil {
		found = ApplicationTypePreTalk
		count++
	}
	if d.ReRegistration != nil {
		found = ApplicationTypeReRegistration
		count++
	}
	switch count {
	case 0:
		return "", fmt.Errorf("application details are empty")
	case 1:
		return found, nil
	default:
		return "", fmt.Errorf("application details carry %d variants, want exactly one", count)
	}
}

// Value implements driver.Valuer so details persist as a jsonb column.
func (d ApplicationDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for the jsonb column.
func (d *ApplicationDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ApplicationDetails{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported details column type %T", src)
	}
}
