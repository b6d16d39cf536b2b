package models

import "time"

// ResearchProgress aggregates per-scholar review and publication counters.
type ResearchProgress struct {
	ID               string     `db:"id" json:"id"`
	ScholarID        string     `db:"scholar_id" json:"scholarId"`
	CompletedReviews int        `db:"completed_reviews" json:"completedReviews"`
	PendingReports   int        `db:"pending_reports" json:"pendingReports"`
	Publications     int        `db:"publications" json:"publications"`
	LastReviewDate   *time.Time `db:"last_review_date" json:"lastReviewDate,omitempty"`
}
