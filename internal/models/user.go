package models

import "time"

// Role represents the available roles for permission evaluation.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleViewer   Role = "viewer"
)

// User represents an application user stored in the users table.
// Users are never hard-deleted; deactivation flips the active flag.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         Role      `db:"role" json:"role"`
	Department   *string   `db:"department" json:"department,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *Role
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// UserPatch carries optional field updates; only non-nil fields change.
type UserPatch struct {
	Username   *string
	FullName   *string
	Role       *Role
	Department *string
	Active     *bool
}

// Empty reports whether the patch carries no changes.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.FullName == nil && p.Role == nil && p.Department == nil && p.Active == nil
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
