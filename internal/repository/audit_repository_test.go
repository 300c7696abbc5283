package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/diwan-hq/diwan-api/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var activityLogColumns = []string{"id", "user_id", "action", "table_name", "record_id", "old_values", "new_values", "created_at"}

func TestAuditRepositoryCreateAssignsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "u1"
	entry := &models.ActivityLog{
		UserID: &userID,
		Action: "user admin created",
	}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListDefaultLimit(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	rows := sqlmock.NewRows(activityLogColumns).
		AddRow("log-1", nil, "login", nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log ORDER BY created_at DESC LIMIT 100")).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.ActivityLogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "login", entries[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListClampsExcessiveLimit(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log ORDER BY created_at DESC LIMIT 100")).
		WillReturnRows(sqlmock.NewRows(activityLogColumns))

	_, err := repo.List(context.Background(), models.ActivityLogFilter{Limit: 9999})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	rows := sqlmock.NewRows(activityLogColumns).
		AddRow("log-2", "u1", "logout", nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log WHERE user_id = $1 ORDER BY created_at DESC LIMIT 50")).
		WithArgs("u1").
		WillReturnRows(rows)

	userID := "u1"
	entries, err := repo.List(context.Background(), models.ActivityLogFilter{UserID: &userID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "logout", entries[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}
