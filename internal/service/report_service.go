package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
	"github.com/diwan-hq/diwan-api/pkg/export"
)

const statsCacheKey = "reports:statistics"

// ExportFormat selects the rendering backend for register exports.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type for the rendered bytes.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

type statisticsSource interface {
	Statistics(ctx context.Context) (*dto.Statistics, error)
}

// Export reads bypass the paginated List methods so the configured export
// limit reaches the database unclamped.
type incomingExportSource interface {
	ListAll(ctx context.Context, limit int) ([]models.Incoming, error)
}

type outgoingExportSource interface {
	ListAll(ctx context.Context, limit int) ([]models.Outgoing, error)
}

type followUpExportSource interface {
	ListAll(ctx context.Context, limit int) ([]models.FollowUp, error)
}

// ReportService computes dashboard statistics and renders register exports.
// Statistics go through a short-lived Redis cache; a nil client disables
// caching.
type ReportService struct {
	repo        statisticsSource
	incoming    incomingExportSource
	outgoing    outgoingExportSource
	followUps   followUpExportSource
	cache       *redis.Client
	metrics     *MetricsService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	cacheTTL    time.Duration
	exportLimit int
	logger      *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(repo statisticsSource, incoming incomingExportSource, outgoing outgoingExportSource, followUps followUpExportSource, cache *redis.Client, metrics *MetricsService, cacheTTL time.Duration, exportLimit int, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if exportLimit <= 0 {
		exportLimit = 1000
	}
	return &ReportService{
		repo:        repo,
		incoming:    incoming,
		outgoing:    outgoing,
		followUps:   followUps,
		cache:       cache,
		metrics:     metrics,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		cacheTTL:    cacheTTL,
		exportLimit: exportLimit,
		logger:      logger,
	}
}

// Statistics returns the dashboard summary, served from cache when fresh.
// Cache failures fall back to the database.
func (s *ReportService) Statistics(ctx context.Context) (*dto.Statistics, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var stats dto.Statistics
			if err := json.Unmarshal(cached, &stats); err == nil {
				s.metrics.RecordCacheLookup(true)
				return &stats, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("statistics cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
	}

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("statistics cache write failed", zap.Error(err))
			}
		}
	}

	return stats, nil
}

// ExportIncoming renders the incoming register in the requested format.
func (s *ReportService) ExportIncoming(ctx context.Context, format ExportFormat) ([]byte, error) {
	records, err := s.incoming.ListAll(ctx, s.exportLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incoming register")
	}

	data := export.Dataset{
		Headers: []string{"Reference", "Subject Code", "Subject", "Sender", "Received", "Priority", "Status"},
	}
	for _, rec := range records {
		data.Rows = append(data.Rows, map[string]string{
			"Reference":    rec.ReferenceNumber,
			"Subject Code": strDeref(rec.SubjectCode),
			"Subject":      rec.Subject,
			"Sender":       rec.Sender,
			"Received":     rec.ReceivedDate,
			"Priority":     string(rec.Priority),
			"Status":       string(rec.Status),
		})
	}

	return s.render(format, data, "Incoming Correspondence")
}

// ExportOutgoing renders the outgoing register in the requested format.
func (s *ReportService) ExportOutgoing(ctx context.Context, format ExportFormat) ([]byte, error) {
	records, err := s.outgoing.ListAll(ctx, s.exportLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outgoing register")
	}

	data := export.Dataset{
		Headers: []string{"Reference", "Subject Code", "Subject", "Recipient", "Sent", "Priority", "Status"},
	}
	for _, rec := range records {
		data.Rows = append(data.Rows, map[string]string{
			"Reference":    rec.ReferenceNumber,
			"Subject Code": strDeref(rec.SubjectCode),
			"Subject":      rec.Subject,
			"Recipient":    rec.Recipient,
			"Sent":         rec.SentDate,
			"Priority":     string(rec.Priority),
			"Status":       string(rec.Status),
		})
	}

	return s.render(format, data, "Outgoing Correspondence")
}

// ExportFollowUps renders the follow-up table in the requested format.
func (s *ReportService) ExportFollowUps(ctx context.Context, format ExportFormat) ([]byte, error) {
	followUps, err := s.followUps.ListAll(ctx, s.exportLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load follow-ups")
	}

	data := export.Dataset{
		Headers: []string{"Code", "Direction", "Due", "Action", "Responsible", "Status"},
	}
	for _, fu := range followUps {
		data.Rows = append(data.Rows, map[string]string{
			"Code":        fu.Code,
			"Direction":   string(fu.CorrespondenceType),
			"Due":         fu.FollowUpDate,
			"Action":      fu.ActionRequired,
			"Responsible": fu.ResponsiblePerson,
			"Status":      string(fu.Status),
		})
	}

	return s.render(format, data, "Follow-ups")
}

// ParseExportFormat validates the format query parameter; blank means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return ExportFormatCSV, nil
	case "pdf":
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

func (s *ReportService) render(format ExportFormat, data export.Dataset, title string) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch format {
	case ExportFormatPDF:
		out, err = s.pdf.Render(data, title)
	default:
		out, err = s.csv.Render(data)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return out, nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
