package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/diwan-hq/diwan-api/internal/models"
)

const followUpColumns = `id, follow_up_code, correspondence_type, correspondence_id, follow_up_date, action_required, responsible_person, status, notes, created_by, created_at, updated_at`

// FollowUpRepository provides database access to follow-up records.
type FollowUpRepository struct {
	db *sqlx.DB
}

// NewFollowUpRepository creates a new instance of FollowUpRepository.
func NewFollowUpRepository(db *sqlx.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// GetByID returns one follow-up.
func (r *FollowUpRepository) GetByID(ctx context.Context, id string) (*models.FollowUp, error) {
	query := fmt.Sprintf(`SELECT %s FROM follow_up WHERE id = $1 LIMIT 1`, followUpColumns)
	var fu models.FollowUp
	if err := r.db.GetContext(ctx, &fu, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get follow-up: %w", err)
	}
	return &fu, nil
}

// List returns follow-ups ordered by follow-up date descending.
func (r *FollowUpRepository) List(ctx context.Context, filter models.FollowUpFilter) ([]models.FollowUp, int, error) {
	baseQuery := `FROM follow_up WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CorrespondenceType != nil {
		conditions = append(conditions, fmt.Sprintf("correspondence_type = $%d", len(args)+1))
		args = append(args, *filter.CorrespondenceType)
	}
	if filter.CorrespondenceID != "" {
		conditions = append(conditions, fmt.Sprintf("correspondence_id = $%d", len(args)+1))
		args = append(args, filter.CorrespondenceID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY follow_up_date DESC, created_at DESC LIMIT %d OFFSET %d", followUpColumns, baseQuery, pageSize, offset)

	var followUps []models.FollowUp
	if err := r.db.SelectContext(ctx, &followUps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list follow-ups: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count follow-ups: %w", err)
	}

	return followUps, total, nil
}

// ListAll returns up to limit follow-ups newest first for exports.
// Unlike List it applies the caller's limit as-is.
func (r *FollowUpRepository) ListAll(ctx context.Context, limit int) ([]models.FollowUp, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := fmt.Sprintf("SELECT %s FROM follow_up ORDER BY follow_up_date DESC, created_at DESC LIMIT %d", followUpColumns, limit)
	var followUps []models.FollowUp
	if err := r.db.SelectContext(ctx, &followUps, query); err != nil {
		return nil, fmt.Errorf("list all follow-ups: %w", err)
	}
	return followUps, nil
}

// CountByCorrespondence returns how many follow-ups already track the given
// correspondence record. The code generator derives the next sequence
// number from this count.
func (r *FollowUpRepository) CountByCorrespondence(ctx context.Context, ctype models.Direction, correspondenceID string) (int, error) {
	const query = `SELECT COUNT(*) FROM follow_up WHERE correspondence_type = $1 AND correspondence_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, ctype, correspondenceID); err != nil {
		return 0, fmt.Errorf("count follow-ups by correspondence: %w", err)
	}
	return count, nil
}

// Create inserts a new follow-up.
func (r *FollowUpRepository) Create(ctx context.Context, fu *models.FollowUp) error {
	if fu.ID == "" {
		fu.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fu.CreatedAt.IsZero() {
		fu.CreatedAt = now
	}
	fu.UpdatedAt = now

	const query = `INSERT INTO follow_up (id, follow_up_code, correspondence_type, correspondence_id, follow_up_date, action_required, responsible_person, status, notes, created_by, created_at, updated_at) VALUES (:id, :follow_up_code, :correspondence_type, :correspondence_id, :follow_up_date, :action_required, :responsible_person, :status, :notes, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fu); err != nil {
		return fmt.Errorf("create follow-up: %w", err)
	}
	return nil
}

// Update applies the supplied field changes only.
func (r *FollowUpRepository) Update(ctx context.Context, id string, patch models.FollowUpPatch) error {
	b := &patchBuilder{}
	if patch.FollowUpDate != nil {
		b.Set("follow_up_date", *patch.FollowUpDate)
	}
	if patch.ActionRequired != nil {
		b.Set("action_required", *patch.ActionRequired)
	}
	if patch.ResponsiblePerson != nil {
		b.Set("responsible_person", *patch.ResponsiblePerson)
	}
	if patch.Status != nil {
		b.Set("status", *patch.Status)
	}
	if patch.Notes != nil {
		b.Set("notes", *patch.Notes)
	}
	if b.Empty() {
		return nil
	}

	query := fmt.Sprintf("UPDATE follow_up SET %s, updated_at = $%d WHERE id = $%d", b.Clause(), b.Next(), b.Next()+1)
	args := append(b.Args(), time.Now().UTC(), id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update follow-up: %w", err)
	}
	return nil
}

// Delete removes a follow-up.
func (r *FollowUpRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM follow_up WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete follow-up: %w", err)
	}
	return nil
}
