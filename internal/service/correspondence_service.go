package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type incomingStore interface {
	GetByID(ctx context.Context, id string) (*models.Incoming, error)
	List(ctx context.Context, filter models.CorrespondenceFilter) ([]models.Incoming, int, error)
	Create(ctx context.Context, rec *models.Incoming) error
	Update(ctx context.Context, id string, patch models.IncomingPatch) error
	Delete(ctx context.Context, id string) error
}

type outgoingStore interface {
	GetByID(ctx context.Context, id string) (*models.Outgoing, error)
	List(ctx context.Context, filter models.CorrespondenceFilter) ([]models.Outgoing, int, error)
	Create(ctx context.Context, rec *models.Outgoing) error
	Update(ctx context.Context, id string, patch models.OutgoingPatch) error
	Delete(ctx context.Context, id string) error
}

type codeGenerator interface {
	NextReferenceNumber(ctx context.Context, direction models.Direction) (string, error)
	NextOutgoingSubjectCode(ctx context.Context) (prefix, suffix string, err error)
	NormalizeSubjectCode(direction models.Direction, prefix, suffix string) (string, error)
}

// CorrespondenceService manages the two registers. Reference numbers and
// outgoing subject codes are filled from the generators when the caller
// leaves them blank; supplied values pass through unchanged apart from
// subject code normalization.
type CorrespondenceService struct {
	incoming  incomingStore
	outgoing  outgoingStore
	codes     codeGenerator
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCorrespondenceService constructs a CorrespondenceService instance.
func NewCorrespondenceService(incoming incomingStore, outgoing outgoingStore, codes codeGenerator, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *CorrespondenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CorrespondenceService{incoming: incoming, outgoing: outgoing, codes: codes, audit: audit, validator: validate, logger: logger}
}

// GetIncoming returns one incoming record.
func (s *CorrespondenceService) GetIncoming(ctx context.Context, id string) (*models.Incoming, error) {
	rec, err := s.incoming.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incoming correspondence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incoming correspondence")
	}
	return rec, nil
}

// ListIncoming returns incoming records plus pagination metadata.
func (s *CorrespondenceService) ListIncoming(ctx context.Context, query dto.CorrespondenceQuery) ([]models.Incoming, *models.Pagination, error) {
	filter, err := buildCorrespondenceFilter(query, func(status string) bool {
		return models.IncomingStatus(status).Valid()
	})
	if err != nil {
		return nil, nil, err
	}

	records, total, err := s.incoming.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incoming correspondence")
	}
	return records, paginationFor(query, total), nil
}

// CreateIncoming registers a new incoming letter. A blank reference number
// is assigned from the register sequence.
func (s *CorrespondenceService) CreateIncoming(ctx context.Context, req dto.CreateIncomingRequest, actor *models.Claims) (*models.Incoming, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correspondence payload")
	}

	referenceNumber := req.ReferenceNumber
	if referenceNumber == "" {
		next, err := s.codes.NextReferenceNumber(ctx, models.DirectionIncoming)
		if err != nil {
			return nil, err
		}
		referenceNumber = next
	}

	var subjectCode *string
	if req.CodePrefix != "" || req.CodeSuffix != "" {
		code, err := s.codes.NormalizeSubjectCode(models.DirectionIncoming, req.CodePrefix, req.CodeSuffix)
		if err != nil {
			return nil, err
		}
		subjectCode = &code
	}

	rec := &models.Incoming{
		ReferenceNumber:   referenceNumber,
		SubjectCode:       subjectCode,
		Subject:           req.Subject,
		Sender:            req.Sender,
		SenderDepartment:  req.SenderDepartment,
		ReceivedDate:      req.ReceivedDate,
		Priority:          priorityOrDefault(req.Priority),
		Status:            models.IncomingStatusNew,
		Content:           req.Content,
		Notes:             req.Notes,
		ResponsiblePerson: req.ResponsiblePerson,
		CreatedBy:         &actor.UserID,
	}
	if req.Status != "" {
		rec.Status = models.IncomingStatus(req.Status)
	}

	if err := s.incoming.Create(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incoming correspondence")
	}

	newValues, _ := json.Marshal(rec)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("incoming correspondence %s created", rec.ReferenceNumber),
		TableName: strPtr("incoming_correspondence"),
		RecordID:  &rec.ID,
		NewValues: newValues,
	})

	return rec, nil
}

// UpdateIncoming applies supplied field changes to an incoming record.
// Subject code segments must be supplied together when changed.
func (s *CorrespondenceService) UpdateIncoming(ctx context.Context, id string, req dto.UpdateIncomingRequest, actor *models.Claims) (*models.Incoming, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correspondence payload")
	}

	rec, err := s.incoming.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incoming correspondence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incoming correspondence")
	}

	patch := models.IncomingPatch{
		ReferenceNumber:   req.ReferenceNumber,
		Subject:           req.Subject,
		Sender:            req.Sender,
		SenderDepartment:  req.SenderDepartment,
		ReceivedDate:      req.ReceivedDate,
		Content:           req.Content,
		Notes:             req.Notes,
		ResponsiblePerson: req.ResponsiblePerson,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		st := models.IncomingStatus(*req.Status)
		patch.Status = &st
	}
	if req.CodePrefix != nil || req.CodeSuffix != nil {
		if req.CodePrefix == nil || req.CodeSuffix == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject code prefix and suffix must be supplied together")
		}
		code, err := s.codes.NormalizeSubjectCode(models.DirectionIncoming, *req.CodePrefix, *req.CodeSuffix)
		if err != nil {
			return nil, err
		}
		patch.SubjectCode = &code
	}

	oldValues, _ := json.Marshal(rec)

	if err := s.incoming.Update(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incoming correspondence")
	}

	applyIncomingPatch(rec, patch)
	newValues, _ := json.Marshal(rec)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("incoming correspondence %s updated", rec.ReferenceNumber),
		TableName: strPtr("incoming_correspondence"),
		RecordID:  &rec.ID,
		OldValues: oldValues,
		NewValues: newValues,
	})

	return rec, nil
}

// DeleteIncoming removes an incoming record and logs the removal.
func (s *CorrespondenceService) DeleteIncoming(ctx context.Context, id string, actor *models.Claims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}

	rec, err := s.incoming.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "incoming correspondence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incoming correspondence")
	}

	if err := s.incoming.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete incoming correspondence")
	}

	oldValues, _ := json.Marshal(rec)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("incoming correspondence %s deleted", rec.ReferenceNumber),
		TableName: strPtr("incoming_correspondence"),
		RecordID:  &rec.ID,
		OldValues: oldValues,
	})

	return nil
}

// GetOutgoing returns one outgoing record.
func (s *CorrespondenceService) GetOutgoing(ctx context.Context, id string) (*models.Outgoing, error) {
	rec, err := s.outgoing.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outgoing correspondence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outgoing correspondence")
	}
	return rec, nil
}

// ListOutgoing returns outgoing records plus pagination metadata.
func (s *CorrespondenceService) ListOutgoing(ctx context.Context, query dto.CorrespondenceQuery) ([]models.Outgoing, *models.Pagination, error) {
	filter, err := buildCorrespondenceFilter(query, func(status string) bool {
		return models.OutgoingStatus(status).Valid()
	})
	if err != nil {
		return nil, nil, err
	}

	records, total, err := s.outgoing.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outgoing correspondence")
	}
	return records, paginationFor(query, total), nil
}

// CreateOutgoing registers a new outgoing letter. Blank reference numbers
// and subject code segments are filled from the generators; when the related
// incoming letter is named, it must exist.
func (s *CorrespondenceService) CreateOutgoing(ctx context.Context, req dto.CreateOutgoingRequest, actor *models.Claims) (*models.Outgoing, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correspondence payload")
	}

	referenceNumber := req.ReferenceNumber
	if referenceNumber == "" {
		next, err := s.codes.NextReferenceNumber(ctx, models.DirectionOutgoing)
		if err != nil {
			return nil, err
		}
		referenceNumber = next
	}

	prefix, suffix := req.CodePrefix, req.CodeSuffix
	if prefix == "" && suffix == "" {
		var err error
		prefix, suffix, err = s.codes.NextOutgoingSubjectCode(ctx)
		if err != nil {
			return nil, err
		}
	}
	code, err := s.codes.NormalizeSubjectCode(models.DirectionOutgoing, prefix, suffix)
	if err != nil {
		return nil, err
	}

	if req.RelatedIncomingID != nil {
		if _, err := s.incoming.GetByID(ctx, *req.RelatedIncomingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "related incoming correspondence not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load related correspondence")
		}
	}

	rec := &models.Outgoing{
		ReferenceNumber:     referenceNumber,
		SubjectCode:         &code,
		Subject:             req.Subject,
		Recipient:           req.Recipient,
		RecipientDepartment: req.RecipientDepartment,
		SentDate:            req.SentDate,
		Priority:            priorityOrDefault(req.Priority),
		Status:              models.OutgoingStatusDraft,
		Content:             req.Content,
		Notes:               req.Notes,
		RecipientEngineer:   req.RecipientEngineer,
		ResponsibleEngineer: req.ResponsibleEngineer,
		RelatedIncomingID:   req.RelatedIncomingID,
		CreatedBy:           &actor.UserID,
	}
	if req.Status != "" {
		rec.Status = models.OutgoingStatus(req.Status)
	}

	if err := s.outgoing.Create(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create outgoing correspondence")
	}

	newValues, _ := json.Marshal(rec)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("outgoing correspondence %s created", rec.ReferenceNumber),
		TableName: strPtr("outgoing_correspondence"),
		RecordID:  &rec.ID,
		NewValues: newValues,
	})

	return rec, nil
}

// UpdateOutgoing applies supplied field changes to an outgoing record.
func (s *CorrespondenceService) UpdateOutgoing(ctx context.Context, id string, req dto.UpdateOutgoingRequest, actor *models.Claims) (*models.Outgoing, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correspondence payload")
	}

	rec, err := s.outgoing.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outgoing correspondence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outgoing correspondence")
	}

	patch := models.OutgoingPatch{
		ReferenceNumber:     req.ReferenceNumber,
		Subject:             req.Subject,
		Recipient:           req.Recipient,
		RecipientDepartment: req.RecipientDepartment,
		SentDate:            req.SentDate,
		Content:             req.Content,
		Notes:               req.Notes,
		RecipientEngineer:   req.RecipientEngineer,
		ResponsibleEngineer: req.ResponsibleEngineer,
		RelatedIncomingID:   req.RelatedIncomingID,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		st := models.OutgoingStatus(*req.Status)
		patch.Status = &st
	}
	if req.CodePrefix != nil || req.CodeSuffix != nil {
		if req.CodePrefix == nil || req.CodeSuffix == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject code prefix and suffix must be supplied together")
		}
		code, err := s.codes.NormalizeSubjectCode(models.DirectionOutgoing, *req.CodePrefix, *req.CodeSuffix)
		if err != nil {
			return nil, err
		}
		patch.SubjectCode = &code
	}
	if req.RelatedIncomingID != nil && *req.RelatedIncomingID != "" {
		if _, err := s.incoming.GetByID(ctx, *req.RelatedIncomingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "related incoming correspondence not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load related correspondence")
		}
	}

	oldValues, _ := json.Marshal(rec)

	if err := s.outgoing.Update(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update outgoing correspondence")
	}

	applyOutgoingPatch(rec, patch)
	newValues, _ := json.Marshal(rec)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("outgoing correspondence %s updated", rec.ReferenceNumber),
		TableName: strPtr("outgoing_correspondence"),
		RecordID:  &rec.ID,
		OldValues: oldValues,
		NewValues: newValues,
	})

	return rec, nil
}

// DeleteOutgoing removes an outgoing record and logs the removal.
func (s *CorrespondenceService) DeleteOutgoing(ctx context.Context, id string, actor *models.Claims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}

	rec, err := s.outgoing.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "outgoing correspondence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outgoing correspondence")
	}

	if err := s.outgoing.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete outgoing correspondence")
	}

	oldValues, _ := json.Marshal(rec)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("outgoing correspondence %s deleted", rec.ReferenceNumber),
		TableName: strPtr("outgoing_correspondence"),
		RecordID:  &rec.ID,
		OldValues: oldValues,
	})

	return nil
}

func (s *CorrespondenceService) emitAudit(ctx context.Context, entry *models.ActivityLog) {
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record correspondence audit log", zap.Error(err), zap.String("action", entry.Action))
	}
}

func buildCorrespondenceFilter(query dto.CorrespondenceQuery, statusValid func(string) bool) (models.CorrespondenceFilter, error) {
	filter := models.CorrespondenceFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		if !statusValid(query.Status) {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown correspondence status")
		}
		filter.Status = query.Status
	}
	if query.Priority != "" {
		p := models.Priority(query.Priority)
		if !p.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
		}
		filter.Priority = &p
	}
	return filter, nil
}

func paginationFor(query dto.CorrespondenceQuery, total int) *models.Pagination {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

func priorityOrDefault(p string) models.Priority {
	if p == "" {
		return models.PriorityNormal
	}
	return models.Priority(p)
}

func applyIncomingPatch(rec *models.Incoming, patch models.IncomingPatch) {
	if patch.ReferenceNumber != nil {
		rec.ReferenceNumber = *patch.ReferenceNumber
	}
	if patch.SubjectCode != nil {
		rec.SubjectCode = patch.SubjectCode
	}
	if patch.Subject != nil {
		rec.Subject = *patch.Subject
	}
	if patch.Sender != nil {
		rec.Sender = *patch.Sender
	}
	if patch.SenderDepartment != nil {
		rec.SenderDepartment = patch.SenderDepartment
	}
	if patch.ReceivedDate != nil {
		rec.ReceivedDate = *patch.ReceivedDate
	}
	if patch.Priority != nil {
		rec.Priority = *patch.Priority
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.Content != nil {
		rec.Content = patch.Content
	}
	if patch.Notes != nil {
		rec.Notes = patch.Notes
	}
	if patch.ResponsiblePerson != nil {
		rec.ResponsiblePerson = patch.ResponsiblePerson
	}
}

func applyOutgoingPatch(rec *models.Outgoing, patch models.OutgoingPatch) {
	if patch.ReferenceNumber != nil {
		rec.ReferenceNumber = *patch.ReferenceNumber
	}
	if patch.SubjectCode != nil {
		rec.SubjectCode = patch.SubjectCode
	}
	if patch.Subject != nil {
		rec.Subject = *patch.Subject
	}
	if patch.Recipient != nil {
		rec.Recipient = *patch.Recipient
	}
	if patch.RecipientDepartment != nil {
		rec.RecipientDepartment = patch.RecipientDepartment
	}
	if patch.SentDate != nil {
		rec.SentDate = *patch.SentDate
	}
	if patch.Priority != nil {
		rec.Priority = *patch.Priority
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.Content != nil {
		rec.Content = patch.Content
	}
	if patch.Notes != nil {
		rec.Notes = patch.Notes
	}
	if patch.RecipientEngineer != nil {
		rec.RecipientEngineer = patch.RecipientEngineer
	}
	if patch.ResponsibleEngineer != nil {
		rec.ResponsibleEngineer = patch.ResponsibleEngineer
	}
	if patch.RelatedIncomingID != nil {
		rec.RelatedIncomingID = patch.RelatedIncomingID
	}
}
