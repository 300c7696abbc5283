package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type stubIncomingStore struct {
	byID         map[string]*models.Incoming
	created      []*models.Incoming
	patches      []models.IncomingPatch
	deleted      []string
	listAllLimit int
}

func (s *stubIncomingStore) GetByID(ctx context.Context, id string) (*models.Incoming, error) {
	rec, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *rec
	return &copied, nil
}

func (s *stubIncomingStore) List(ctx context.Context, filter models.CorrespondenceFilter) ([]models.Incoming, int, error) {
	var out []models.Incoming
	for _, rec := range s.byID {
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func (s *stubIncomingStore) ListAll(ctx context.Context, limit int) ([]models.Incoming, error) {
	s.listAllLimit = limit
	var out []models.Incoming
	for _, rec := range s.byID {
		out = append(out, *rec)
	}
	return out, nil
}

func (s *stubIncomingStore) Create(ctx context.Context, rec *models.Incoming) error {
	if rec.ID == "" {
		rec.ID = "in-new"
	}
	s.created = append(s.created, rec)
	return nil
}

func (s *stubIncomingStore) Update(ctx context.Context, id string, patch models.IncomingPatch) error {
	s.patches = append(s.patches, patch)
	return nil
}

func (s *stubIncomingStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubOutgoingStore struct {
	byID         map[string]*models.Outgoing
	created      []*models.Outgoing
	patches      []models.OutgoingPatch
	deleted      []string
	listAllLimit int
}

func (s *stubOutgoingStore) GetByID(ctx context.Context, id string) (*models.Outgoing, error) {
	rec, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *rec
	return &copied, nil
}

func (s *stubOutgoingStore) List(ctx context.Context, filter models.CorrespondenceFilter) ([]models.Outgoing, int, error) {
	var out []models.Outgoing
	for _, rec := range s.byID {
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func (s *stubOutgoingStore) ListAll(ctx context.Context, limit int) ([]models.Outgoing, error) {
	s.listAllLimit = limit
	var out []models.Outgoing
	for _, rec := range s.byID {
		out = append(out, *rec)
	}
	return out, nil
}

func (s *stubOutgoingStore) Create(ctx context.Context, rec *models.Outgoing) error {
	if rec.ID == "" {
		rec.ID = "out-new"
	}
	s.created = append(s.created, rec)
	return nil
}

func (s *stubOutgoingStore) Update(ctx context.Context, id string, patch models.OutgoingPatch) error {
	s.patches = append(s.patches, patch)
	return nil
}

func (s *stubOutgoingStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubCodeGenerator struct {
	nextRef    string
	nextPrefix string
	nextSuffix string
}

func (s *stubCodeGenerator) NextReferenceNumber(ctx context.Context, direction models.Direction) (string, error) {
	return s.nextRef, nil
}

func (s *stubCodeGenerator) NextOutgoingSubjectCode(ctx context.Context) (string, string, error) {
	return s.nextPrefix, s.nextSuffix, nil
}

func (s *stubCodeGenerator) NormalizeSubjectCode(direction models.Direction, prefix, suffix string) (string, error) {
	if prefix == "" || suffix == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "bad segments")
	}
	return prefix + "-" + suffix, nil
}

func newCorrespondenceService(incoming *stubIncomingStore, outgoing *stubOutgoingStore, codes *stubCodeGenerator, audit *stubAudit) *CorrespondenceService {
	if incoming == nil {
		incoming = &stubIncomingStore{byID: map[string]*models.Incoming{}}
	}
	if outgoing == nil {
		outgoing = &stubOutgoingStore{byID: map[string]*models.Outgoing{}}
	}
	if codes == nil {
		codes = &stubCodeGenerator{nextRef: "1", nextPrefix: "OUT", nextSuffix: "CHR1"}
	}
	if audit == nil {
		audit = &stubAudit{}
	}
	return NewCorrespondenceService(incoming, outgoing, codes, audit, nil, zap.NewNop())
}

func TestIncomingCreateFillsReferenceNumber(t *testing.T) {
	incoming := &stubIncomingStore{byID: map[string]*models.Incoming{}}
	audit := &stubAudit{}
	svc := newCorrespondenceService(incoming, nil, &stubCodeGenerator{nextRef: "7"}, audit)

	rec, err := svc.CreateIncoming(context.Background(), dto.CreateIncomingRequest{
		Subject:      "Budget request",
		Sender:       "Finance",
		ReceivedDate: "2026-08-30",
	}, followUpClaims(models.RoleEmployee))

	require.NoError(t, err)
	assert.Equal(t, "7", rec.ReferenceNumber)
	assert.Equal(t, models.IncomingStatusNew, rec.Status)
	assert.Equal(t, models.PriorityNormal, rec.Priority)
	assert.Nil(t, rec.SubjectCode)
	require.Len(t, audit.entries, 1)
	assert.Contains(t, audit.entries[0].Action, "created")
}

func TestIncomingCreateKeepsSuppliedReference(t *testing.T) {
	incoming := &stubIncomingStore{byID: map[string]*models.Incoming{}}
	svc := newCorrespondenceService(incoming, nil, &stubCodeGenerator{nextRef: "7"}, nil)

	rec, err := svc.CreateIncoming(context.Background(), dto.CreateIncomingRequest{
		ReferenceNumber: "42",
		CodePrefix:      "IN",
		CodeSuffix:      "AB12",
		Subject:         "Budget request",
		Sender:          "Finance",
		ReceivedDate:    "2026-08-30",
		Priority:        "urgent",
	}, followUpClaims(models.RoleEmployee))

	require.NoError(t, err)
	assert.Equal(t, "42", rec.ReferenceNumber)
	require.NotNil(t, rec.SubjectCode)
	assert.Equal(t, "IN-AB12", *rec.SubjectCode)
	assert.Equal(t, models.PriorityUrgent, rec.Priority)
}

func TestIncomingCreateRejectsMissingSubject(t *testing.T) {
	incoming := &stubIncomingStore{byID: map[string]*models.Incoming{}}
	audit := &stubAudit{}
	svc := newCorrespondenceService(incoming, nil, nil, audit)

	_, err := svc.CreateIncoming(context.Background(), dto.CreateIncomingRequest{
		Sender:       "Finance",
		ReceivedDate: "2026-08-30",
	}, followUpClaims(models.RoleEmployee))

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, incoming.created)
	assert.Empty(t, audit.entries)
}

func TestIncomingUpdateHalfCodePairRejected(t *testing.T) {
	incoming := &stubIncomingStore{byID: map[string]*models.Incoming{
		"c1": {ID: "c1", ReferenceNumber: "3"},
	}}
	svc := newCorrespondenceService(incoming, nil, nil, nil)

	prefix := "IN"
	_, err := svc.UpdateIncoming(context.Background(), "c1", dto.UpdateIncomingRequest{CodePrefix: &prefix}, followUpClaims(models.RoleEmployee))

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, incoming.patches)
}

func TestIncomingDeleteRecordsAudit(t *testing.T) {
	incoming := &stubIncomingStore{byID: map[string]*models.Incoming{
		"c1": {ID: "c1", ReferenceNumber: "3"},
	}}
	audit := &stubAudit{}
	svc := newCorrespondenceService(incoming, nil, nil, audit)

	require.NoError(t, svc.DeleteIncoming(context.Background(), "c1", followUpClaims(models.RoleEmployee)))
	assert.Equal(t, []string{"c1"}, incoming.deleted)
	require.Len(t, audit.entries, 1)
	assert.Contains(t, audit.entries[0].Action, "deleted")
}

func TestOutgoingCreateGeneratesSubjectCode(t *testing.T) {
	outgoing := &stubOutgoingStore{byID: map[string]*models.Outgoing{}}
	audit := &stubAudit{}
	svc := newCorrespondenceService(nil, outgoing, &stubCodeGenerator{nextRef: "12", nextPrefix: "OUT", nextSuffix: "CHR4"}, audit)

	rec, err := svc.CreateOutgoing(context.Background(), dto.CreateOutgoingRequest{
		Subject:   "Reply to budget request",
		Recipient: "Finance",
		SentDate:  "2026-08-31",
	}, followUpClaims(models.RoleEmployee))

	require.NoError(t, err)
	assert.Equal(t, "12", rec.ReferenceNumber)
	require.NotNil(t, rec.SubjectCode)
	assert.Equal(t, "OUT-CHR4", *rec.SubjectCode)
	assert.Equal(t, models.OutgoingStatusDraft, rec.Status)
	require.Len(t, audit.entries, 1)
}

func TestOutgoingCreateUnknownRelatedIncoming(t *testing.T) {
	incoming := &stubIncomingStore{byID: map[string]*models.Incoming{}}
	outgoing := &stubOutgoingStore{byID: map[string]*models.Outgoing{}}
	svc := newCorrespondenceService(incoming, outgoing, nil, nil)

	related := "missing"
	_, err := svc.CreateOutgoing(context.Background(), dto.CreateOutgoingRequest{
		Subject:           "Reply",
		Recipient:         "Finance",
		SentDate:          "2026-08-31",
		RelatedIncomingID: &related,
	}, followUpClaims(models.RoleEmployee))

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, outgoing.created)
}

func TestOutgoingUpdateStatus(t *testing.T) {
	outgoing := &stubOutgoingStore{byID: map[string]*models.Outgoing{
		"o1": {ID: "o1", ReferenceNumber: "4", Status: models.OutgoingStatusDraft},
	}}
	audit := &stubAudit{}
	svc := newCorrespondenceService(nil, outgoing, nil, audit)

	status := "sent"
	rec, err := svc.UpdateOutgoing(context.Background(), "o1", dto.UpdateOutgoingRequest{Status: &status}, followUpClaims(models.RoleEmployee))

	require.NoError(t, err)
	assert.Equal(t, models.OutgoingStatusSent, rec.Status)
	require.Len(t, outgoing.patches, 1)
	require.Len(t, audit.entries, 1)
	assert.Contains(t, audit.entries[0].Action, "updated")
}

func TestListIncomingRejectsUnknownStatus(t *testing.T) {
	svc := newCorrespondenceService(nil, nil, nil, nil)

	_, _, err := svc.ListIncoming(context.Background(), dto.CorrespondenceQuery{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetOutgoingNotFound(t *testing.T) {
	svc := newCorrespondenceService(nil, nil, nil, nil)

	_, err := svc.GetOutgoing(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
