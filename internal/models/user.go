package models

import "time"

// UserRole represents the portal roles. Committee roles double as workflow
// stage roles; admin carries the administrative override.
type UserRole string

const (
	RoleScholar    UserRole = "scholar"
	RoleSupervisor UserRole = "supervisor"
	RoleDRC        UserRole = "drc"
	RoleIRC        UserRole = "irc"
	RoleDoAA       UserRole = "doaa"
	RoleAdmin      UserRole = "admin"
)

// User is a portal principal. All principals carry opaque string identifiers.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"fullName"`
	Role         UserRole   `db:"role" json:"role"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	AvatarURL    string     `db:"avatar_url" json:"avatarUrl,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// CanOverrideWorkflow reports whether the user holds the administrative
// override capability for approval stages.
func (u User) CanOverrideWorkflow() bool {
	return u.Role == RoleAdmin
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
