package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/snip/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsertRe = `(?s)^\s*INSERT\s+INTO\s+tags\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\).*WHERE\s+excluded\.last_updated\s*>\s*tags\.last_updated\s*$`

func TestUpsert(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(upsertRe).
		WithArgs("u", int64(1), "go", false, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertRe).
		WithArgs("u", int64(2), "sql", true, int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewPostgresRepository(db).Upsert(context.Background(), "u", []wire.TagRow{
		{ID: 1, Name: "go", LastUpdated: 5},
		{ID: 2, Name: "sql", Deleted: true, LastUpdated: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(upsertRe).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertRe).WillReturnError(errors.New("boom"))

	n, err := NewPostgresRepository(db).Upsert(context.Background(), "u", []wire.TagRow{
		{ID: 1, LastUpdated: 1}, {ID: 2, LastUpdated: 1}, {ID: 3, LastUpdated: 1},
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "upsert tag 2")
}
