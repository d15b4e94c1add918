package pushes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	p := &models.Push{ID: uuid.New(), UserID: "alice", Watermark: 42, Received: 3, Accepted: 2, ArchiveKey: "k"}
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+pushes\b.*RETURNING\s+created_at\s*$`).
		WithArgs(p.ID, "alice", int64(42), 3, 2, "k").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, created, p.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+pushes`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Push{ID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert push")
}

func TestLatest(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	created := time.Now().UTC()
	mock.ExpectQuery(`(?s)SELECT\s+id,.*FROM\s+pushes\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "watermark", "received", "accepted", "archive_key", "created_at"}).
			AddRow(id.String(), "alice", int64(7), 1, 1, "", created))

	p, err := repo.Latest(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, int64(7), p.Watermark)
}

func TestLatest_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+pushes`).WithArgs("nobody").WillReturnError(sql.ErrNoRows)

	_, err := repo.Latest(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.NotFound)
}
