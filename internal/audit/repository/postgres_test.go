package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventflow/auth-service/internal/audit/domain"
)

var auditCols = []string{"id", "user_id", "action", "resource", "outcome", "ip", "metadata", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_AnonymousEntry(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(`^INSERT INTO audit_logs`).
		WithArgs("a1", sql.NullString{}, "login", "session", domain.OutcomeFailure, "10.0.0.1", sql.NullString{}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.AuditLog{
		ID: "a1", Action: "login", Resource: "session", Outcome: domain.OutcomeFailure, IP: "10.0.0.1", CreatedAt: now,
	})
	require.NoError(t, err)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`^INSERT INTO audit_logs`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.AuditLog{ID: "a1"})
	require.Error(t, err)
}

func TestListByUser_FiltersByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(auditCols).
		AddRow("a2", "u1", "logout", "session", "success", "10.0.0.1", nil, now).
		AddRow("a1", "u1", "login", "session", "success", "10.0.0.1", `{"code":"OK"}`, now.Add(-time.Minute))
	mock.ExpectQuery(`FROM audit_logs WHERE user_id = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("u1", int32(10), int32(0)).
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a2", list[0].ID)
	require.Equal(t, "", list[0].Metadata)
	require.Equal(t, `{"code":"OK"}`, list[1].Metadata)
}

func TestListByUser_AllUsers(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rows := sqlmock.NewRows(auditCols).
		AddRow("a1", nil, "login", "session", "failure", "10.0.0.1", nil, time.Now())
	mock.ExpectQuery(`FROM audit_logs ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(int32(50), int32(50)).
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "", 50, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Empty(t, list[0].UserID)
}
