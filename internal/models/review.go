package models

import "time"

// Review is an immutable append-only record of one reviewer decision. The
// stage field records the stage the decision was made at, not the stage the
// application moved to. Rows are never updated or deleted.
type Review struct {
	ID            string         `db:"id" json:"id"`
	ApplicationID string         `db:"application_id" json:"applicationId"`
	ReviewerID    string         `db:"reviewer_id" json:"reviewerId"`
	Stage         WorkflowStage  `db:"stage" json:"stage"`
	Decision      ReviewDecision `db:"decision" json:"decision"`
	Remarks       string         `db:"remarks" json:"remarks"`
	ReviewDate    time.Time      `db:"review_date" json:"reviewDate"`
}
