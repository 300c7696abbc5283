package models

import "time"

// Audit action texts recorded in the activity log.
const (
	AuditActionLogin          = "login"
	AuditActionLogout         = "logout"
	AuditActionPasswordChange = "password_change"
)

// ActivityLog represents one append-only audit trail entry. Entries are
// never updated or deleted.
type ActivityLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	TableName *string   `db:"table_name" json:"table_name,omitempty"`
	RecordID  *string   `db:"record_id" json:"record_id,omitempty"`
	OldValues []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues []byte    `db:"new_values" json:"new_values,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ActivityLogFilter constrains activity log queries.
type ActivityLogFilter struct {
	UserID *string
	Limit  int
}
