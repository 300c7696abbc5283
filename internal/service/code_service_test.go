package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type stubReferenceSource struct {
	refs []string
	err  error
}

func (s *stubReferenceSource) ReferenceNumbers(ctx context.Context) ([]string, error) {
	return s.refs, s.err
}

type stubSubjectCodeSource struct {
	last string
	err  error
}

func (s *stubSubjectCodeSource) LastSubjectCode(ctx context.Context) (string, error) {
	return s.last, s.err
}

type stubFollowUpCounter struct {
	count int
	err   error
}

func (s *stubFollowUpCounter) CountByCorrespondence(ctx context.Context, ctype models.Direction, correspondenceID string) (int, error) {
	return s.count, s.err
}

func newCodeService(incoming, outgoing *stubReferenceSource, last *stubSubjectCodeSource, counter *stubFollowUpCounter) *CodeService {
	if incoming == nil {
		incoming = &stubReferenceSource{}
	}
	if outgoing == nil {
		outgoing = &stubReferenceSource{}
	}
	if last == nil {
		last = &stubSubjectCodeSource{err: sql.ErrNoRows}
	}
	if counter == nil {
		counter = &stubFollowUpCounter{}
	}
	return NewCodeService(incoming, outgoing, last, counter, zap.NewNop())
}

func TestNextReferenceNumberEmptyRegister(t *testing.T) {
	svc := newCodeService(&stubReferenceSource{}, nil, nil, nil)

	ref, err := svc.NextReferenceNumber(context.Background(), models.DirectionIncoming)
	require.NoError(t, err)
	assert.Equal(t, "1", ref)
}

func TestNextReferenceNumberSkipsLegacyValues(t *testing.T) {
	svc := newCodeService(&stubReferenceSource{refs: []string{"3", "17", "ABC-9", "", " 5 "}}, nil, nil, nil)

	ref, err := svc.NextReferenceNumber(context.Background(), models.DirectionIncoming)
	require.NoError(t, err)
	assert.Equal(t, "18", ref)
}

func TestNextReferenceNumberUsesRegisterOfDirection(t *testing.T) {
	incoming := &stubReferenceSource{refs: []string{"2"}}
	outgoing := &stubReferenceSource{refs: []string{"40"}}
	svc := newCodeService(incoming, outgoing, nil, nil)

	ref, err := svc.NextReferenceNumber(context.Background(), models.DirectionOutgoing)
	require.NoError(t, err)
	assert.Equal(t, "41", ref)
}

func TestNextReferenceNumberUnknownDirection(t *testing.T) {
	svc := newCodeService(nil, nil, nil, nil)

	_, err := svc.NextReferenceNumber(context.Background(), models.Direction("sideways"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNextOutgoingSubjectCodeSeedsWhenEmpty(t *testing.T) {
	svc := newCodeService(nil, nil, &stubSubjectCodeSource{err: sql.ErrNoRows}, nil)

	prefix, suffix, err := svc.NextOutgoingSubjectCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OUT", prefix)
	assert.Equal(t, "CHR1", suffix)
}

func TestNextOutgoingSubjectCodeIncrementsTrailingNumber(t *testing.T) {
	svc := newCodeService(nil, nil, &stubSubjectCodeSource{last: "OUT-CHR7"}, nil)

	prefix, suffix, err := svc.NextOutgoingSubjectCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OUT", prefix)
	assert.Equal(t, "CHR8", suffix)
}

func TestNextOutgoingSubjectCodeSeedsOnUnparseableLast(t *testing.T) {
	svc := newCodeService(nil, nil, &stubSubjectCodeSource{last: "not a code"}, nil)

	prefix, suffix, err := svc.NextOutgoingSubjectCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OUT", prefix)
	assert.Equal(t, "CHR1", suffix)
}

func TestNextOutgoingSubjectCodeStoreError(t *testing.T) {
	svc := newCodeService(nil, nil, &stubSubjectCodeSource{err: errors.New("boom")}, nil)

	_, _, err := svc.NextOutgoingSubjectCode(context.Background())
	require.Error(t, err)
}

func TestNormalizeSubjectCode(t *testing.T) {
	svc := newCodeService(nil, nil, nil, nil)

	code, err := svc.NormalizeSubjectCode(models.DirectionOutgoing, "out", "chr12")
	require.NoError(t, err)
	assert.Equal(t, "OUT-CHR1", code)

	code, err = svc.NormalizeSubjectCode(models.DirectionOutgoing, " out ", "chr9")
	require.NoError(t, err)
	assert.Equal(t, "OUT-CHR9", code)

	code, err = svc.NormalizeSubjectCode(models.DirectionIncoming, "in", "ab12")
	require.NoError(t, err)
	assert.Equal(t, "IN-AB12", code)
}

func TestNormalizeSubjectCodeRejectsMalformedSegments(t *testing.T) {
	svc := newCodeService(nil, nil, nil, nil)

	_, err := svc.NormalizeSubjectCode(models.DirectionOutgoing, "", "CHR1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.NormalizeSubjectCode(models.DirectionOutgoing, "O1T", "CHR1")
	require.Error(t, err)

	_, err = svc.NormalizeSubjectCode(models.DirectionOutgoing, "OUT", "")
	require.Error(t, err)

	_, err = svc.NormalizeSubjectCode(models.DirectionIncoming, "OUT", "CHR1")
	require.Error(t, err, "incoming prefix is capped at two letters")
}

func TestNextFollowUpCodeCountsExisting(t *testing.T) {
	svc := newCodeService(nil, nil, nil, &stubFollowUpCounter{count: 2})

	code, err := svc.NextFollowUpCode(context.Background(), models.DirectionOutgoing, "c1", "OUT-CHR5")
	require.NoError(t, err)
	assert.Equal(t, "OUT-OUT-CHR5-3", code)
}

func TestFollowUpCodeJoinsLiterally(t *testing.T) {
	assert.Equal(t, "IN-IN-AB12-1", FollowUpCode(models.DirectionIncoming, "IN-AB12", 0))
	assert.Equal(t, "OUT-OUT-CHR5-3", FollowUpCode(models.DirectionOutgoing, "OUT-CHR5", 2))
}

func TestFollowUpCodeFallbackStem(t *testing.T) {
	assert.Equal(t, "IN-CHR-1", FollowUpCode(models.DirectionIncoming, "", 0))
	assert.Equal(t, "OUT-CHR-4", FollowUpCode(models.DirectionOutgoing, "", 3))
}
