package models

import "time"

// AuditAction constants represent actions recorded in the audit trail.
const (
	AuditActionLogin               = "LOGIN"
	AuditActionLogout              = "LOGOUT"
	AuditActionApplicationSubmit   = "APPLICATION_SUBMIT"
	AuditActionApplicationDecision = "APPLICATION_DECISION"
	AuditActionProfileSync         = "PROFILE_SYNC"
	AuditActionProvision           = "PROVISION"
	AuditActionUserCreate          = "USER_CREATE"
	AuditActionUserUpdate          = "USER_UPDATE"
	AuditActionUserDelete          = "USER_DELETE"
	AuditActionNoticePublish       = "NOTICE_PUBLISH"
	AuditActionCommitteeAssign     = "COMMITTEE_ASSIGN"
	AuditActionExportRequest       = "EXPORT_REQUEST"
)

// AuditLog represents one audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
