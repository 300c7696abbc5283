package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

var (
	subjectCodePattern    = regexp.MustCompile(`([A-Z]{1,3})-([A-Z]{0,3})(\d+)`)
	outgoingPrefixPattern = regexp.MustCompile(`^[A-Z]{1,3}$`)
	incomingPrefixPattern = regexp.MustCompile(`^[A-Z]{1,2}$`)
	codeSuffixPattern     = regexp.MustCompile(`^[A-Z0-9]{1,4}$`)
)

const (
	defaultCodePrefix = "OUT"
	defaultCodeSuffix = "CHR1"
	fallbackCodeStem  = "CHR"

	maxPrefixLen = 3
	maxSuffixLen = 4
)

type referenceSource interface {
	ReferenceNumbers(ctx context.Context) ([]string, error)
}

type subjectCodeSource interface {
	LastSubjectCode(ctx context.Context) (string, error)
}

type followUpCounter interface {
	CountByCorrespondence(ctx context.Context, ctype models.Direction, correspondenceID string) (int, error)
}

// CodeService derives reference numbers, subject codes, and follow-up codes
// from prior records. Nothing here is cached; every value is recomputed
// from the store on demand.
type CodeService struct {
	incoming  referenceSource
	outgoing  referenceSource
	lastCode  subjectCodeSource
	followUps followUpCounter
	logger    *zap.Logger
}

// NewCodeService constructs a CodeService instance.
func NewCodeService(incoming, outgoing referenceSource, lastCode subjectCodeSource, followUps followUpCounter, logger *zap.Logger) *CodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeService{incoming: incoming, outgoing: outgoing, lastCode: lastCode, followUps: followUps, logger: logger}
}

// NextReferenceNumber returns max(stored numeric reference numbers)+1 for
// the register, starting at 1. Legacy reference numbers that do not parse
// as integers are ignored.
func (s *CodeService) NextReferenceNumber(ctx context.Context, direction models.Direction) (string, error) {
	if !direction.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown correspondence direction")
	}

	source := s.incoming
	if direction == models.DirectionOutgoing {
		source = s.outgoing
	}

	refs, err := source.ReferenceNumbers(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read reference numbers")
	}

	max := 0
	for _, ref := range refs {
		n, err := strconv.Atoi(strings.TrimSpace(ref))
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}

	return strconv.Itoa(max + 1), nil
}

// NextOutgoingSubjectCode proposes the next outgoing subject code by
// parsing the last issued one and incrementing its trailing number. When no
// prior code parses it seeds with OUT-CHR1.
func (s *CodeService) NextOutgoingSubjectCode(ctx context.Context) (prefix, suffix string, err error) {
	last, err := s.lastCode.LastSubjectCode(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read last subject code")
	}

	if m := subjectCodePattern.FindStringSubmatch(last); m != nil {
		n, convErr := strconv.Atoi(m[3])
		if convErr == nil {
			return m[1], fmt.Sprintf("%s%d", m[2], n+1), nil
		}
	}

	return defaultCodePrefix, defaultCodeSuffix, nil
}

// NormalizeSubjectCode validates both code segments for the given register
// and joins them. Segments are uppercased and truncated to their maximum
// length first; anything still malformed is a format error, never coerced.
func (s *CodeService) NormalizeSubjectCode(direction models.Direction, prefix, suffix string) (string, error) {
	prefix = truncate(strings.ToUpper(strings.TrimSpace(prefix)), maxPrefixLen)
	suffix = truncate(strings.ToUpper(strings.TrimSpace(suffix)), maxSuffixLen)

	prefixPattern := outgoingPrefixPattern
	if direction == models.DirectionIncoming {
		prefixPattern = incomingPrefixPattern
	}

	if !prefixPattern.MatchString(prefix) {
		return "", appErrors.Clone(appErrors.ErrValidation, "subject code prefix must be uppercase letters")
	}
	if !codeSuffixPattern.MatchString(suffix) {
		return "", appErrors.Clone(appErrors.ErrValidation, "subject code suffix must be uppercase letters or digits")
	}

	return prefix + "-" + suffix, nil
}

// NextFollowUpCode recomputes the code the next follow-up of a
// correspondence record would receive.
func (s *CodeService) NextFollowUpCode(ctx context.Context, direction models.Direction, correspondenceID, subjectCode string) (string, error) {
	if !direction.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown correspondence direction")
	}

	count, err := s.followUps.CountByCorrespondence(ctx, direction, correspondenceID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count follow-ups")
	}

	return FollowUpCode(direction, subjectCode, count), nil
}

// FollowUpCode joins the direction prefix, the owning letter's subject code,
// and the next sequence number. An empty subject code falls back to the CHR
// stem.
func FollowUpCode(direction models.Direction, subjectCode string, existingCount int) string {
	if subjectCode == "" {
		subjectCode = fallbackCodeStem
	}
	return fmt.Sprintf("%s-%s-%d", direction.Prefix(), subjectCode, existingCount+1)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
