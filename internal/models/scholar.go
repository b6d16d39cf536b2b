package models

import "time"

// ScholarStatus tracks programme standing.
type ScholarStatus string

const (
	ScholarStatusActive    ScholarStatus = "Active"
	ScholarStatusInactive  ScholarStatus = "Inactive"
	ScholarStatusGraduated ScholarStatus = "Graduated"
)

// Scholar holds research-programme data for a scholar principal, including
// the supervisor assignments of record consulted during supervisor-stage
// authorization.
type Scholar struct {
	ScholarID      string        `db:"scholar_id" json:"scholarId"`
	UserID         string        `db:"user_id" json:"userId"`
	Batch          string        `db:"batch" json:"batch,omitempty"`
	Status         ScholarStatus `db:"status" json:"status"`
	Department     string        `db:"department" json:"department,omitempty"`
	ResearchArea   string        `db:"research_area" json:"researchArea,omitempty"`
	ResearchTitle  string        `db:"research_title" json:"researchTitle,omitempty"`
	JoiningDate    string        `db:"joining_date" json:"joiningDate,omitempty"`
	Phase          string        `db:"phase" json:"phase,omitempty"`
	Programme      string        `db:"programme" json:"programme,omitempty"`
	Location       string        `db:"location" json:"location,omitempty"`
	SupervisorID   *string       `db:"supervisor_id" json:"supervisorId,omitempty"`
	CoSupervisorID *string       `db:"co_supervisor_id" json:"coSupervisorId,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

// Employee holds staff data for supervisors and committee members.
type Employee struct {
	EmployeeID  string    `db:"employee_id" json:"employeeId"`
	UserID      string    `db:"user_id" json:"userId"`
	Designation string    `db:"designation" json:"designation,omitempty"`
	Department  string    `db:"department" json:"department,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// RACMember assigns a committee member (drc/irc/doaa) to a specific scholar.
// When assignments exist for a scholar and stage, only assigned members may
// decide at that stage.
type RACMember struct {
	ID         string        `db:"id" json:"id"`
	ScholarID  string        `db:"scholar_id" json:"scholarId"`
	EmployeeID string        `db:"employee_id" json:"employeeId"`
	MemberRole WorkflowStage `db:"member_role" json:"memberRole"`
	AssignedOn time.Time     `db:"assigned_on" json:"assignedOn"`
}
