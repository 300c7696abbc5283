package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type auditStore interface {
	List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error)
}

// AuditService exposes the append-only activity log, newest first. There is
// no write path here; entries are produced by the mutating services.
type AuditService struct {
	repo   auditStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService instance.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// List returns recent activity log entries, optionally scoped to one user.
func (s *AuditService) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity log")
	}
	return entries, nil
}

// AuditSink forwards audit appends to the repository and counts failures.
// The mutating services write through it so append failures show up on the
// metrics endpoint even though they never abort the primary operation.
type AuditSink struct {
	store   auditLogger
	metrics *MetricsService
}

// NewAuditSink wraps an audit store with failure instrumentation.
func NewAuditSink(store auditLogger, metrics *MetricsService) *AuditSink {
	return &AuditSink{store: store, metrics: metrics}
}

// CreateAuditLog appends one entry, recording a metric on failure.
func (s *AuditSink) CreateAuditLog(ctx context.Context, entry *models.ActivityLog) error {
	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		s.metrics.RecordAuditFailure()
		return err
	}
	return nil
}
