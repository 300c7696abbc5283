package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/diwan-hq/diwan-api/internal/dto"
)

// ReportRepository aggregates register counts for the statistics dashboard.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Statistics computes the dashboard counters in one round trip per counter.
func (r *ReportRepository) Statistics(ctx context.Context) (*dto.Statistics, error) {
	stats := &dto.Statistics{}

	counters := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalIncoming, `SELECT COUNT(*) FROM incoming_correspondence`},
		{&stats.TotalOutgoing, `SELECT COUNT(*) FROM outgoing_correspondence`},
		{&stats.NewIncoming, `SELECT COUNT(*) FROM incoming_correspondence WHERE status = 'new'`},
		{&stats.DraftOutgoing, `SELECT COUNT(*) FROM outgoing_correspondence WHERE status = 'draft'`},
		{&stats.PendingFollowUps, `SELECT COUNT(*) FROM follow_up WHERE status = 'pending'`},
		{&stats.IncomingThisMonth, `SELECT COUNT(*) FROM incoming_correspondence WHERE date_trunc('month', received_date) = date_trunc('month', CURRENT_DATE)`},
		{&stats.OutgoingThisMonth, `SELECT COUNT(*) FROM outgoing_correspondence WHERE date_trunc('month', sent_date) = date_trunc('month', CURRENT_DATE)`},
	}

	for _, c := range counters {
		if err := r.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("statistics: %w", err)
		}
	}

	return stats, nil
}
