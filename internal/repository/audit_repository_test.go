package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), int64(7), models.AuditActionSelect, sqlmock.AnyArg(), true, "", "10.0.0.1", "web", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sessionID := int64(3)
	entry := &models.AuditLog{
		TeacherID: 7,
		Action:    models.AuditActionSelect,
		SessionID: &sessionID,
		Succeeded: true,
		IPAddress: "10.0.0.1",
		UserAgent: "web",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "action", "session_id", "succeeded", "detail", "ip_address", "user_agent", "created_at"}).
		AddRow("a1", int64(7), "CANCEL_SESSION", nil, true, "", "10.0.0.1", "mobile", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, action, session_id, succeeded, detail, ip_address, user_agent, created_at")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	entries, err := repo.ListByTeacher(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionCancel, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
