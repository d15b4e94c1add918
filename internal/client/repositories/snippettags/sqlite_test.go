package snippettags_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/snip/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/client/repositories/snippettags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*sql.DB, *snippettags.SQLiteRepository) {
	t.Helper()
	db, err := repomanager.Open(context.Background(), filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO snippets (id, name, content, deleted, last_updated) VALUES (1, 's', '', 0, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tags (id, name, deleted, last_updated) VALUES (1, 'b', 0, 1), (2, 'a', 0, 1)`)
	require.NoError(t, err)
	return db, snippettags.NewSQLiteRepository(db)
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM snippet_tags`).Scan(&n))
	return n
}

func TestLink_IsIdempotent(t *testing.T) {
	db, r := setupRepo(t)
	ctx := context.Background()

	changed, err := r.Link(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.Link(ctx, 1, 1, 3)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 1, countRows(t, db))

	rows, err := r.SelectUpdated(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].LastUpdated)
}

func TestUnlinkAndRelink_ReusesRow(t *testing.T) {
	db, r := setupRepo(t)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 1, 2)
	require.NoError(t, err)

	removed, err := r.Unlink(ctx, 1, 1, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Unlink(ctx, 1, 1, 4)
	require.NoError(t, err)
	assert.False(t, removed)

	names, err := r.TagNames(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, names)

	changed, err := r.Link(ctx, 1, 1, 5)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, countRows(t, db))

	rows, err := r.SelectUpdated(ctx, 4)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Deleted)
	assert.Equal(t, int64(5), rows[0].LastUpdated)
}

func TestUnlinkAll(t *testing.T) {
	_, r := setupRepo(t)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = r.Link(ctx, 1, 2, 2)
	require.NoError(t, err)

	n, err := r.UnlinkAll(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.UnlinkAll(ctx, 1, 4)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTagNames_Sorted(t *testing.T) {
	_, r := setupRepo(t)
	ctx := context.Background()

	_, err := r.Link(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = r.Link(ctx, 1, 2, 2)
	require.NoError(t, err)

	names, err := r.TagNames(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	max, err := r.MaxLastUpdated(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), max)
}
