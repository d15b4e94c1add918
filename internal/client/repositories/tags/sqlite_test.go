package tags_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/snip/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/client/repositories/tags"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*sql.DB, *tags.SQLiteRepository) {
	t.Helper()
	db, err := repomanager.Open(context.Background(), filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, tags.NewSQLiteRepository(db)
}

func TestEnsure_CreatesOnce(t *testing.T) {
	_, r := setupRepo(t)
	ctx := context.Background()

	id1, err := r.Ensure(ctx, "go", 1)
	require.NoError(t, err)
	id2, err := r.Ensure(ctx, "go", 2)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	tag, err := r.GetByName(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tag.LastUpdated, "ensuring a live tag must not restamp it")
}

func TestEnsure_RevivesTombstone(t *testing.T) {
	db, r := setupRepo(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO tags (id, name, deleted, last_updated) VALUES (5, 'go', 1, 3)`)
	require.NoError(t, err)

	id, err := r.Ensure(ctx, "go", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	tag, err := r.GetByName(ctx, "go")
	require.NoError(t, err)
	assert.False(t, tag.Deleted)
	assert.Equal(t, int64(4), tag.LastUpdated)
}

func TestGetByName_NotFound(t *testing.T) {
	_, r := setupRepo(t)

	_, err := r.GetByName(context.Background(), "none")
	assert.ErrorIs(t, err, common.NotFound)
}

func TestListLive_OnlyTagsInUse(t *testing.T) {
	db, r := setupRepo(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO snippets (id, name, content, deleted, last_updated) VALUES (1, 'a', '', 0, 1), (2, 'b', '', 1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tags (id, name, deleted, last_updated) VALUES (1, 'z', 0, 1), (2, 'y', 0, 1), (3, 'x', 0, 1), (4, 'w', 1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO snippet_tags (snippet_id, tag_id, deleted, last_updated)
		VALUES (1, 1, 0, 1), (1, 3, 0, 1), (2, 2, 0, 1), (1, 4, 0, 1)`)
	require.NoError(t, err)

	list, err := r.ListLive(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, tag := range list {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"x", "z"}, names)
}

func TestSelectUpdatedAndMax(t *testing.T) {
	_, r := setupRepo(t)
	ctx := context.Background()

	_, err := r.Ensure(ctx, "a", 1)
	require.NoError(t, err)
	_, err = r.Ensure(ctx, "b", 5)
	require.NoError(t, err)

	rows, err := r.SelectUpdated(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].Name)

	max, err := r.MaxLastUpdated(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), max)
}
