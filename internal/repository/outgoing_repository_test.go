package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/diwan-hq/diwan-api/internal/models"
)

func newOutgoingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var outgoingTestColumns = []string{"id", "reference_number", "subject_code", "subject", "recipient", "recipient_department", "sent_date", "priority", "status", "content", "notes", "recipient_engineer", "responsible_engineer", "related_incoming_id", "created_by", "created_at", "updated_at"}

func TestOutgoingRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outgoing_correspondence")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	code := "OUT-CHR4"
	related := "inc-1"
	rec := &models.Outgoing{
		ReferenceNumber:   "12",
		SubjectCode:       &code,
		Subject:           "Reply to budget request",
		Recipient:         "Finance",
		SentDate:          "2026-09-01",
		Priority:          models.PriorityNormal,
		Status:            models.OutgoingStatusDraft,
		RelatedIncomingID: &related,
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	require.NotEmpty(t, rec.ID)

	rows := sqlmock.NewRows(outgoingTestColumns).
		AddRow(rec.ID, rec.ReferenceNumber, code, rec.Subject, rec.Recipient, nil, rec.SentDate, "normal", "draft", nil, nil, nil, nil, related, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM outgoing_correspondence WHERE id = $1")).
		WithArgs(rec.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, models.OutgoingStatusDraft, found.Status)
	require.NotNil(t, found.RelatedIncomingID)
	require.Equal(t, "inc-1", *found.RelatedIncomingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingRepositoryListStatus(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	rows := sqlmock.NewRows(outgoingTestColumns).
		AddRow("out-1", "3", nil, "Notice", "Vendor", nil, "2026-08-20", "normal", "sent", nil, nil, nil, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM outgoing_correspondence WHERE 1=1 AND status = $1")).
		WithArgs("sent").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM outgoing_correspondence WHERE 1=1 AND status = $1")).
		WithArgs("sent").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.CorrespondenceFilter{Status: "sent"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, total)
	require.Equal(t, models.OutgoingStatusSent, records[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingRepositoryUpdateRelatedIncoming(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outgoing_correspondence SET status = $1, related_incoming_id = $2, updated_at = $3 WHERE id = $4")).
		WithArgs("sent", "inc-7", sqlmock.AnyArg(), "out-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	status := models.OutgoingStatusSent
	related := "inc-7"
	err := repo.Update(context.Background(), "out-1", models.OutgoingPatch{Status: &status, RelatedIncomingID: &related})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingRepositoryListAllHonorsLimit(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM outgoing_correspondence ORDER BY sent_date DESC, created_at DESC LIMIT 500")).
		WillReturnRows(sqlmock.NewRows(outgoingTestColumns))

	_, err := repo.ListAll(context.Background(), 500)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingRepositoryLastSubjectCode(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_code FROM outgoing_correspondence WHERE subject_code IS NOT NULL ORDER BY created_at DESC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"subject_code"}).AddRow("OUT-CHR7"))

	code, err := repo.LastSubjectCode(context.Background())
	require.NoError(t, err)
	require.Equal(t, "OUT-CHR7", code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingRepositoryLastSubjectCodeEmptyRegister(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_code FROM outgoing_correspondence")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LastSubjectCode(context.Background())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutgoingRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newOutgoingRepoMock(t)
	defer cleanup()

	repo := NewOutgoingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outgoing_correspondence WHERE id = $1")).
		WithArgs("out-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "out-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
