package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Every statement is idempotent so the full set runs unconditionally on
// each startup.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'employee', 'viewer')),
		department TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS incoming_correspondence (
		id TEXT PRIMARY KEY,
		reference_number TEXT UNIQUE NOT NULL,
		subject TEXT NOT NULL,
		sender TEXT NOT NULL,
		sender_department TEXT,
		received_date DATE NOT NULL,
		priority TEXT NOT NULL DEFAULT 'normal' CHECK (priority IN ('urgent', 'important', 'normal')),
		status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'under-review', 'replied', 'archived')),
		content TEXT,
		notes TEXT,
		created_by TEXT REFERENCES users (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS outgoing_correspondence (
		id TEXT PRIMARY KEY,
		reference_number TEXT UNIQUE NOT NULL,
		subject TEXT NOT NULL,
		recipient TEXT NOT NULL,
		recipient_department TEXT,
		sent_date DATE NOT NULL,
		priority TEXT NOT NULL DEFAULT 'normal' CHECK (priority IN ('urgent', 'important', 'normal')),
		status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'sent', 'received', 'archived')),
		content TEXT,
		notes TEXT,
		related_incoming_id TEXT REFERENCES incoming_correspondence (id),
		created_by TEXT REFERENCES users (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS follow_up (
		id TEXT PRIMARY KEY,
		correspondence_type TEXT NOT NULL CHECK (correspondence_type IN ('incoming', 'outgoing')),
		correspondence_id TEXT NOT NULL,
		follow_up_date DATE NOT NULL,
		action_required TEXT NOT NULL,
		responsible_person TEXT,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in-progress', 'closed')),
		notes TEXT,
		created_by TEXT REFERENCES users (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		user_id TEXT REFERENCES users (id),
		action TEXT NOT NULL,
		table_name TEXT,
		record_id TEXT,
		old_values JSONB,
		new_values JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_incoming_ref ON incoming_correspondence (reference_number)`,
	`CREATE INDEX IF NOT EXISTS idx_outgoing_ref ON outgoing_correspondence (reference_number)`,
	`CREATE INDEX IF NOT EXISTS idx_incoming_date ON incoming_correspondence (received_date)`,
	`CREATE INDEX IF NOT EXISTS idx_outgoing_date ON outgoing_correspondence (sent_date)`,
	`CREATE INDEX IF NOT EXISTS idx_follow_up_date ON follow_up (follow_up_date)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_created ON activity_log (created_at)`,

	// Columns added after the initial schema shipped.
	`ALTER TABLE incoming_correspondence ADD COLUMN IF NOT EXISTS subject_code TEXT`,
	`ALTER TABLE incoming_correspondence ADD COLUMN IF NOT EXISTS responsible_person TEXT`,
	`ALTER TABLE outgoing_correspondence ADD COLUMN IF NOT EXISTS subject_code TEXT`,
	`ALTER TABLE outgoing_correspondence ADD COLUMN IF NOT EXISTS recipient_engineer TEXT`,
	`ALTER TABLE outgoing_correspondence ADD COLUMN IF NOT EXISTS responsible_engineer TEXT`,
	`ALTER TABLE follow_up ADD COLUMN IF NOT EXISTS follow_up_code TEXT`,

	// Legacy follow-up status labels collapse onto the current set.
	`UPDATE follow_up SET status = 'in-progress' WHERE status = 'in_progress'`,
	`UPDATE follow_up SET status = 'closed' WHERE status IN ('completed', 'cancelled')`,

	// Pre-existing follow_up tables lack the status restriction the two
	// register tables carry inline; once the legacy labels are normalized
	// the same constraint holds here.
	`ALTER TABLE follow_up DROP CONSTRAINT IF EXISTS follow_up_status_check`,
	`ALTER TABLE follow_up ADD CONSTRAINT follow_up_status_check CHECK (status IN ('pending', 'in-progress', 'closed'))`,
}

// Migrate applies the additive, self-healing schema.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range migrationStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
