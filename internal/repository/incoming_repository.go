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

const incomingColumns = `id, reference_number, subject_code, subject, sender, sender_department, received_date, priority, status, content, notes, responsible_person, created_by, created_at, updated_at`

// IncomingRepository provides database access to the incoming register.
type IncomingRepository struct {
	db *sqlx.DB
}

// NewIncomingRepository creates a new instance of IncomingRepository.
func NewIncomingRepository(db *sqlx.DB) *IncomingRepository {
	return &IncomingRepository{db: db}
}

// GetByID returns one incoming record.
func (r *IncomingRepository) GetByID(ctx context.Context, id string) (*models.Incoming, error) {
	query := fmt.Sprintf(`SELECT %s FROM incoming_correspondence WHERE id = $1 LIMIT 1`, incomingColumns)
	var rec models.Incoming
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get incoming: %w", err)
	}
	return &rec, nil
}

// List returns incoming records ordered by received date descending.
func (r *IncomingRepository) List(ctx context.Context, filter models.CorrespondenceFilter) ([]models.Incoming, int, error) {
	baseQuery := `FROM incoming_correspondence WHERE 1=1`
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
		conditions = append(conditions, fmt.Sprintf("(LOWER(subject) LIKE $%d OR LOWER(sender) LIKE $%d OR reference_number = $%d)", len(args)+1, len(args)+1, len(args)+2))
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY received_date DESC, created_at DESC LIMIT %d OFFSET %d", incomingColumns, baseQuery, pageSize, offset)

	var records []models.Incoming
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list incoming: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count incoming: %w", err)
	}

	return records, total, nil
}

// ListAll returns up to limit records newest first for register exports.
// Unlike List it applies the caller's limit as-is.
func (r *IncomingRepository) ListAll(ctx context.Context, limit int) ([]models.Incoming, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := fmt.Sprintf("SELECT %s FROM incoming_correspondence ORDER BY received_date DESC, created_at DESC LIMIT %d", incomingColumns, limit)
	var records []models.Incoming
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list all incoming: %w", err)
	}
	return records, nil
}

// Create inserts a new incoming record.
func (r *IncomingRepository) Create(ctx context.Context, rec *models.Incoming) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	const query = `INSERT INTO incoming_correspondence (id, reference_number, subject_code, subject, sender, sender_department, received_date, priority, status, content, notes, responsible_person, created_by, created_at, updated_at) VALUES (:id, :reference_number, :subject_code, :subject, :sender, :sender_department, :received_date, :priority, :status, :content, :notes, :responsible_person, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create incoming: %w", err)
	}
	return nil
}

// Update applies the supplied field changes only.
func (r *IncomingRepository) Update(ctx context.Context, id string, patch models.IncomingPatch) error {
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
	if patch.Sender != nil {
		b.Set("sender", *patch.Sender)
	}
	if patch.SenderDepartment != nil {
		b.Set("sender_department", *patch.SenderDepartment)
	}
	if patch.ReceivedDate != nil {
		b.Set("received_date", *patch.ReceivedDate)
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
	if patch.ResponsiblePerson != nil {
		b.Set("responsible_person", *patch.ResponsiblePerson)
	}
	if b.Empty() {
		return nil
	}

	query := fmt.Sprintf("UPDATE incoming_correspondence SET %s, updated_at = $%d WHERE id = $%d", b.Clause(), b.Next(), b.Next()+1)
	args := append(b.Args(), time.Now().UTC(), id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update incoming: %w", err)
	}
	return nil
}

// Delete removes an incoming record.
func (r *IncomingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM incoming_correspondence WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete incoming: %w", err)
	}
	return nil
}

// ReferenceNumbers returns every stored reference number. The sequence
// generator filters out legacy non-numeric values itself.
func (r *IncomingRepository) ReferenceNumbers(ctx context.Context) ([]string, error) {
	const query = `SELECT reference_number FROM incoming_correspondence`
	var refs []string
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("incoming reference numbers: %w", err)
	}
	return refs, nil
}
