package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/diwan-hq/diwan-api/internal/models"
)

// AuditRepository provides append and query access to the activity log.
// Entries are immutable; there are no update or delete operations.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog appends one entry with a server-assigned timestamp.
func (r *AuditRepository) CreateAuditLog(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_log (id, user_id, action, table_name, record_id, old_values, new_values, created_at) VALUES (:id, :user_id, :action, :table_name, :record_id, :old_values, :new_values, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns entries newest first, optionally scoped to one user.
func (r *AuditRepository) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []models.ActivityLog
	if filter.UserID != nil {
		query := fmt.Sprintf(`SELECT id, user_id, action, table_name, record_id, old_values, new_values, created_at FROM activity_log WHERE user_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
		if err := r.db.SelectContext(ctx, &entries, query, *filter.UserID); err != nil {
			return nil, fmt.Errorf("list audit log: %w", err)
		}
		return entries, nil
	}

	query := fmt.Sprintf(`SELECT id, user_id, action, table_name, record_id, old_values, new_values, created_at FROM activity_log ORDER BY created_at DESC LIMIT %d`, limit)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return entries, nil
}
