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

const outgoingColumns = `id, reference_number, subject_code, subject, recipient, recipient_department, sent_date, priority, status, content, notes, recipient_engineer, responsible_engineer, related_incoming_id, created_by, created_at, updated_at`

// OutgoingRepository provides database access to the outgoing register.
type OutgoingRepository struct {
	db *sqlx.DB
}

// NewOutgoingRepository creates a new instance of OutgoingRepository.
func NewOutgoingRepository(db *sqlx.DB) *OutgoingRepository {
	return &OutgoingRepository{db: db}
}

// GetByID returns one outgoing record.
func (r *OutgoingRepository) GetByID(ctx context.Context, id string) (*models.Outgoing, error) {
	query := fmt.Sprintf(`SELECT %s FROM outgoing_correspondence WHERE id = $1 LIMIT 1`, outgoingColumns)
	var rec models.Outgoing
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get outgoing: %w", err)
	}
	return &rec, nil
}

// List returns outgoing records ordered by sent date descending.
func (r *OutgoingRepository) List(ctx context.Context, filter models.CorrespondenceFilter) ([]models.Outgoing, int, error) {
	baseQuery := `FROM outgoing_correspondence WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(subject) LIKE $%d OR LOWER(recipient) LIKE $%d OR reference_number = $%d)", len(args)+1, len(args)+1, len(args)+2))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%", filter.Search)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY sent_date DESC, created_at DESC LIMIT %d OFFSET %d", outgoingColumns, baseQuery, pageSize, offset)

	var records []models.Outgoing
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list outgoing: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count outgoing: %w", err)
	}

	return records, total, nil
}

// ListAll returns up to limit records newest first for register exports.
// Unlike List it applies the caller's limit as-is.
func (r *OutgoingRepository) ListAll(ctx context.Context, limit int) ([]models.Outgoing, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := fmt.Sprintf("SELECT %s FROM outgoing_correspondence ORDER BY sent_date DESC, created_at DESC LIMIT %d", outgoingColumns, limit)
	var records []models.Outgoing
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list all outgoing: %w", err)
	}
	return records, nil
}

// Create inserts a new outgoing record.
func (r *OutgoingRepository) Create(ctx context.Context, rec *models.Outgoing) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	const query = `INSERT INTO outgoing_correspondence (id, reference_number, subject_code, subject, recipient, recipient_department, sent_date, priority, status, content, notes, recipient_engineer, responsible_engineer, related_incoming_id, created_by, created_at, updated_at) VALUES (:id, :reference_number, :subject_code, :subject, :recipient, :recipient_department, :sent_date, :priority, :status, :content, :notes, :recipient_engineer, :responsible_engineer, :related_incoming_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create outgoing: %w", err)
	}
	return nil
}

// Update applies the supplied field changes only.
func (r *OutgoingRepository) Update(ctx context.Context, id string, patch models.OutgoingPatch) error {
	b := &patchBuilder{}
	if patch.ReferenceNumber != nil {
		b.Set("reference_number", *patch.ReferenceNumber)
	}
	if patch.SubjectCode != nil {
		b.Set("subject_code", *patch.SubjectCode)
	}
	if patch.Subject != nil {
		b.Set("subject", *patch.Subject)
	}
	if patch.Recipient != nil {
		b.Set("recipient", *patch.Recipient)
	}
	if patch.RecipientDepartment != nil {
		b.Set("recipient_department", *patch.RecipientDepartment)
	}
	if patch.SentDate != nil {
		b.Set("sent_date", *patch.SentDate)
	}
	if patch.Priority != nil {
		b.Set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		b.Set("status", *patch.Status)
	}
	if patch.Content != nil {
		b.Set("content", *patch.Content)
	}
	if patch.Notes != nil {
		b.Set("notes", *patch.Notes)
	}
	if patch.RecipientEngineer != nil {
		b.Set("recipient_engineer", *patch.RecipientEngineer)
	}
	if patch.ResponsibleEngineer != nil {
		b.Set("responsible_engineer", *patch.ResponsibleEngineer)
	}
	if patch.RelatedIncomingID != nil {
		b.Set("related_incoming_id", *patch.RelatedIncomingID)
	}
	if b.Empty() {
		return nil
	}

	query := fmt.Sprintf("UPDATE outgoing_correspondence SET %s, updated_at = $%d WHERE id = $%d", b.Clause(), b.Next(), b.Next()+1)
	args := append(b.Args(), time.Now().UTC(), id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update outgoing: %w", err)
	}
	return nil
}

// Delete removes an outgoing record.
func (r *OutgoingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM outgoing_correspondence WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete outgoing: %w", err)
	}
	return nil
}

// ReferenceNumbers returns every stored reference number. The sequence
// generator filters out legacy non-numeric values itself.
func (r *OutgoingRepository) ReferenceNumbers(ctx context.Context) ([]string, error) {
	const query = `SELECT reference_number FROM outgoing_correspondence`
	var refs []string
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("outgoing reference numbers: %w", err)
	}
	return refs, nil
}

// LastSubjectCode returns the most recently issued subject code, or
// sql.ErrNoRows when none has been stored yet.
func (r *OutgoingRepository) LastSubjectCode(ctx context.Context) (string, error) {
	const query = `SELECT subject_code FROM outgoing_correspondence WHERE subject_code IS NOT NULL ORDER BY created_at DESC LIMIT 1`
	var code string
	if err := r.db.GetContext(ctx, &code, query); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("last subject code: %w", err)
	}
	return code, nil
}
