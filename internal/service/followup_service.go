package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type followUpStore interface {
	GetByID(ctx context.Context, id string) (*models.FollowUp, error)
	List(ctx context.Context, filter models.FollowUpFilter) ([]models.FollowUp, int, error)
	CountByCorrespondence(ctx context.Context, ctype models.Direction, correspondenceID string) (int, error)
	Create(ctx context.Context, fu *models.FollowUp) error
	Update(ctx context.Context, id string, patch models.FollowUpPatch) error
	Delete(ctx context.Context, id string) error
}

type incomingReader interface {
	GetByID(ctx context.Context, id string) (*models.Incoming, error)
}

type outgoingReader interface {
	GetByID(ctx context.Context, id string) (*models.Outgoing, error)
}

type credentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// FollowUpService governs the follow-up lifecycle: pending, in-progress,
// closed. Closed records only change through the re-authenticated edit
// path. Creation permission is enforced by the route layer; state-dependent
// checks live here because they need the stored record.
type FollowUpService struct {
	repo      followUpStore
	incoming  incomingReader
	outgoing  outgoingReader
	verifier  credentialVerifier
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFollowUpService constructs a FollowUpService instance.
func NewFollowUpService(repo followUpStore, incoming incomingReader, outgoing outgoingReader, verifier credentialVerifier, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *FollowUpService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FollowUpService{repo: repo, incoming: incoming, outgoing: outgoing, verifier: verifier, audit: audit, validator: validate, logger: logger}
}

// Get returns one follow-up.
func (s *FollowUpService) Get(ctx context.Context, id string) (*models.FollowUp, error) {
	fu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "follow-up not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load follow-up")
	}
	return fu, nil
}

// List returns follow-ups with pagination metadata.
func (s *FollowUpService) List(ctx context.Context, query dto.FollowUpQuery) ([]models.FollowUp, *models.Pagination, error) {
	filter := models.FollowUpFilter{
		CorrespondenceID: query.CorrespondenceID,
		Page:             query.Page,
		PageSize:         query.PageSize,
	}
	if query.CorrespondenceType != "" {
		d := models.Direction(query.CorrespondenceType)
		if !d.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown correspondence direction")
		}
		filter.CorrespondenceType = &d
	}
	if query.Status != "" {
		st := models.FollowUpStatus(query.Status)
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown follow-up status")
		}
		filter.Status = &st
	}

	followUps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list follow-ups")
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return followUps, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Create registers a new follow-up. The code is derived from the owning
// letter's subject code and the per-letter sequence; status always starts
// at pending. Validation happens before any persistence or logging.
func (s *FollowUpService) Create(ctx context.Context, req dto.CreateFollowUpRequest, actor *models.Claims) (*models.FollowUp, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid follow-up payload")
	}
	if strings.TrimSpace(req.ActionRequired) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "required action text is missing")
	}
	if strings.TrimSpace(req.ResponsiblePerson) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "responsible person is missing")
	}

	direction := models.Direction(req.CorrespondenceType)
	subjectCode, err := s.resolveSubjectCode(ctx, direction, req.CorrespondenceID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountByCorrespondence(ctx, direction, req.CorrespondenceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count follow-ups")
	}

	fu := &models.FollowUp{
		Code:               FollowUpCode(direction, subjectCode, count),
		CorrespondenceType: direction,
		CorrespondenceID:   req.CorrespondenceID,
		FollowUpDate:       req.FollowUpDate,
		ActionRequired:     req.ActionRequired,
		ResponsiblePerson:  req.ResponsiblePerson,
		Status:             models.FollowUpStatusPending,
		Notes:              req.Notes,
		CreatedBy:          &actor.UserID,
	}

	if err := s.repo.Create(ctx, fu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create follow-up")
	}

	newValues, _ := json.Marshal(fu)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("follow-up %s created", fu.Code),
		TableName: strPtr("follow_up"),
		RecordID:  &fu.ID,
		NewValues: newValues,
	})

	return fu, nil
}

// Update is the single combined save operation: field edits and the status
// transition travel together and produce exactly one audit entry. Closed
// records demand the edit_closed_follow_up permission plus successful
// re-authentication before anything changes.
func (s *FollowUpService) Update(ctx context.Context, id string, req dto.UpdateFollowUpRequest, actor *models.Claims) (*models.FollowUp, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !HasPermission(actor.Role, ActionEditFollowUp) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to edit follow-ups")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid follow-up payload")
	}
	if req.ActionRequired != nil && strings.TrimSpace(*req.ActionRequired) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "required action text is missing")
	}
	if req.ResponsiblePerson != nil && strings.TrimSpace(*req.ResponsiblePerson) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "responsible person is missing")
	}

	fu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "follow-up not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load follow-up")
	}

	if fu.Status == models.FollowUpStatusClosed {
		if err := s.authorizeClosedEdit(ctx, req, actor); err != nil {
			return nil, err
		}
	}

	oldStatus := fu.Status
	newStatus := oldStatus
	if req.Status != nil {
		newStatus = models.FollowUpStatus(*req.Status)
	}

	if newStatus == models.FollowUpStatusClosed && oldStatus != models.FollowUpStatusClosed {
		if !HasPermission(actor.Role, ActionCloseFollowUp) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to close follow-ups")
		}
		if !req.ConfirmClose {
			return nil, appErrors.Clone(appErrors.ErrValidation, "closing a follow-up requires confirmation")
		}
	}

	patch := models.FollowUpPatch{
		FollowUpDate:      req.FollowUpDate,
		ActionRequired:    req.ActionRequired,
		ResponsiblePerson: req.ResponsiblePerson,
		Notes:             req.Notes,
	}
	if newStatus != oldStatus {
		patch.Status = &newStatus
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	oldValues, _ := json.Marshal(fu)

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update follow-up")
	}

	applyFollowUpPatch(fu, patch)
	newValues, _ := json.Marshal(fu)

	action := fmt.Sprintf("follow-up %s updated", fu.Code)
	if newStatus != oldStatus {
		action = fmt.Sprintf("follow-up %s status changed from %s to %s", fu.Code, oldStatus, newStatus)
	}
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    action,
		TableName: strPtr("follow_up"),
		RecordID:  &fu.ID,
		OldValues: oldValues,
		NewValues: newValues,
	})

	return fu, nil
}

// Delete removes a follow-up and records the removal.
func (s *FollowUpService) Delete(ctx context.Context, id string, actor *models.Claims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !HasPermission(actor.Role, ActionDeleteFollowUp) {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete follow-ups")
	}

	fu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "follow-up not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load follow-up")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete follow-up")
	}

	oldValues, _ := json.Marshal(fu)
	s.emitAudit(ctx, &models.ActivityLog{
		UserID:    &actor.UserID,
		Action:    fmt.Sprintf("follow-up %s deleted", fu.Code),
		TableName: strPtr("follow_up"),
		RecordID:  &fu.ID,
		OldValues: oldValues,
	})

	return nil
}

func (s *FollowUpService) authorizeClosedEdit(ctx context.Context, req dto.UpdateFollowUpRequest, actor *models.Claims) error {
	if !HasPermission(actor.Role, ActionEditClosedFollowUp) {
		return appErrors.Clone(appErrors.ErrClosedRecord, "closed follow-up cannot be modified")
	}
	if req.ReauthPassword == "" {
		return appErrors.Clone(appErrors.ErrReauthRequired, "re-authentication required to edit a closed follow-up")
	}
	if _, err := s.verifier.VerifyCredentials(ctx, actor.Username, req.ReauthPassword); err != nil {
		return appErrors.Clone(appErrors.ErrReauthRequired, "re-authentication failed")
	}
	return nil
}

func (s *FollowUpService) resolveSubjectCode(ctx context.Context, direction models.Direction, correspondenceID string) (string, error) {
	switch direction {
	case models.DirectionIncoming:
		rec, err := s.incoming.GetByID(ctx, correspondenceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.Clone(appErrors.ErrValidation, "linked correspondence not found")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load correspondence")
		}
		if rec.SubjectCode != nil {
			return *rec.SubjectCode, nil
		}
		return "", nil
	case models.DirectionOutgoing:
		rec, err := s.outgoing.GetByID(ctx, correspondenceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.Clone(appErrors.ErrValidation, "linked correspondence not found")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load correspondence")
		}
		if rec.SubjectCode != nil {
			return *rec.SubjectCode, nil
		}
		return "", nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unknown correspondence direction")
}

func (s *FollowUpService) emitAudit(ctx context.Context, entry *models.ActivityLog) {
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record follow-up audit log", zap.Error(err), zap.String("action", entry.Action))
	}
}

func applyFollowUpPatch(fu *models.FollowUp, patch models.FollowUpPatch) {
	if patch.FollowUpDate != nil {
		fu.FollowUpDate = *patch.FollowUpDate
	}
	if patch.ActionRequired != nil {
		fu.ActionRequired = *patch.ActionRequired
	}
	if patch.ResponsiblePerson != nil {
		fu.ResponsiblePerson = *patch.ResponsiblePerson
	}
	if patch.Status != nil {
		fu.Status = *patch.Status
	}
	if patch.Notes != nil {
		fu.Notes = patch.Notes
	}
}
