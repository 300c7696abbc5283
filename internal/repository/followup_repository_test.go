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

func newFollowUpRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var followUpTestColumns = []string{"id", "follow_up_code", "correspondence_type", "correspondence_id", "follow_up_date", "action_required", "responsible_person", "status", "notes", "created_by", "created_at", "updated_at"}

func TestFollowUpRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO follow_up")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	fu := &models.FollowUp{
		Code:               "IN-IN-AB12-1",
		CorrespondenceType: models.DirectionIncoming,
		CorrespondenceID:   "inc-1",
		FollowUpDate:       "2026-09-05",
		ActionRequired:     "Send reply",
		ResponsiblePerson:  "Khaled Omar",
		Status:             models.FollowUpStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), fu))
	require.NotEmpty(t, fu.ID)

	rows := sqlmock.NewRows(followUpTestColumns).
		AddRow(fu.ID, fu.Code, "incoming", fu.CorrespondenceID, fu.FollowUpDate, fu.ActionRequired, fu.ResponsiblePerson, "pending", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM follow_up WHERE id = $1")).
		WithArgs(fu.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), fu.ID)
	require.NoError(t, err)
	require.Equal(t, "IN-IN-AB12-1", found.Code)
	require.Equal(t, models.FollowUpStatusPending, found.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUpRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM follow_up WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUpRepositoryListByCorrespondence(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	rows := sqlmock.NewRows(followUpTestColumns).
		AddRow("fu-1", "OUT-OUT-CHR5-1", "outgoing", "out-9", "2026-09-10", "Call vendor", "Sara", "pending", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM follow_up WHERE 1=1 AND correspondence_type = $1 AND correspondence_id = $2")).
		WithArgs("outgoing", "out-9").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM follow_up WHERE 1=1 AND correspondence_type = $1 AND correspondence_id = $2")).
		WithArgs("outgoing", "out-9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ctype := models.DirectionOutgoing
	items, total, err := repo.List(context.Background(), models.FollowUpFilter{CorrespondenceType: &ctype, CorrespondenceID: "out-9"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "OUT-OUT-CHR5-1", items[0].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUpRepositoryListAllHonorsLimit(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM follow_up ORDER BY follow_up_date DESC, created_at DESC LIMIT 1000")).
		WillReturnRows(sqlmock.NewRows(followUpTestColumns))

	_, err := repo.ListAll(context.Background(), 1000)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUpRepositoryCountByCorrespondence(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM follow_up WHERE correspondence_type = $1 AND correspondence_id = $2")).
		WithArgs("incoming", "inc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByCorrespondence(context.Background(), models.DirectionIncoming, "inc-1")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUpRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE follow_up SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("closed", sqlmock.AnyArg(), "fu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	status := models.FollowUpStatusClosed
	err := repo.Update(context.Background(), "fu-1", models.FollowUpPatch{Status: &status})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUpRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newFollowUpRepoMock(t)
	defer cleanup()

	repo := NewFollowUpRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM follow_up WHERE id = $1")).
		WithArgs("fu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "fu-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
