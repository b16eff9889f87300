package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuditRepoWithMock(t *testing.T) (*PostgresAuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewPostgresAuditRepository(db), mock
}

func TestPostgresAuditRepository_Record(t *testing.T) {
	repo, mock := newAuditRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WithArgs("actor-1", models.AuditDeletePost, "post", "post-1", "Lost wallet", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	entry := &models.AuditEntry{
		ActorID:    "actor-1",
		Action:     models.AuditDeletePost,
		TargetType: "post",
		TargetID:   "post-1",
		Detail:     "Lost wallet",
	}
	require.NoError(t, repo.Record(context.Background(), entry))
	assert.Equal(t, uint(7), entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditRepository_RecordError(t *testing.T) {
	repo, mock := newAuditRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WillReturnError(errors.New("db down"))

	err := repo.Record(context.Background(), &models.AuditEntry{Action: models.AuditCleanup})
	assert.EqualError(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditRepository_List(t *testing.T) {
	repo, mock := newAuditRepoWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "actor_id", "action", "target_type", "target_id", "detail", "created_at"}).
		AddRow(2, "admin", models.AuditCleanup, "system", "", "", now).
		AddRow(1, "admin", models.AuditDeleteUser, "user", "u-1", "bob", now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT \* FROM "audit_entries" ORDER BY created_at desc LIMIT`).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditCleanup, entries[0].Action)
	assert.Equal(t, "u-1", entries[1].TargetID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopAuditRepository(t *testing.T) {
	var repo AuditRepository = NoopAuditRepository{}
	require.NoError(t, repo.Record(context.Background(), &models.AuditEntry{}))
	entries, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
