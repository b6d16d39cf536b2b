package models

import "time"

// Notice is a portal announcement, optionally scoped to one role.
type Notice struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	TargetRole *UserRole `db:"target_role" json:"targetRole,omitempty"`
	CreatedBy  string    `db:"created_by" json:"createdBy"`
	Date       time.Time `db:"date" json:"date"`
}

// NoticeFilter constrains notice listings.
type NoticeFilter struct {
	Role  *UserRole
	Limit int
}
