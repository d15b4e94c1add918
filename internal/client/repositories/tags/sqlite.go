package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/client/models"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Ensure(ctx context.Context, name string, stamp int64) (int64, error) {
	op := fmt.Sprintf("ensure tag %q", name)

	t, err := r.GetByName(ctx, name)
	switch {
	case err == nil && !t.Deleted:
		return t.ID, nil
	case err == nil:
		_, err = r.db.ExecContext(ctx,
			`UPDATE tags SET deleted = 0, last_updated = ? WHERE id = ?`, stamp, t.ID)
		if err != nil {
			return 0, common.E(common.StorageFailure, op, err)
		}
		return t.ID, nil
	case !errors.Is(err, common.NotFound):
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (name, deleted, last_updated) VALUES (?, 0, ?)`, name, stamp)
	if err != nil {
		return 0, common.E(common.StorageFailure, op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, common.E(common.StorageFailure, op, err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, deleted, last_updated FROM tags WHERE name = ?`, name).
		Scan(&t.ID, &t.Name, &t.Deleted, &t.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.E(common.NotFound, fmt.Sprintf("tag %q", name), nil)
	}
	if err != nil {
		return nil, common.E(common.StorageFailure, fmt.Sprintf("tag %q", name), err)
	}
	return &t, nil
}

func (r *SQLiteRepository) list(ctx context.Context, op, query string, args ...any) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Deleted, &t.LastUpdated); err != nil {
			return nil, common.E(common.StorageFailure, op, fmt.Errorf("scan: %w", err))
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	return result, nil
}

// ListLive returns live tags that at least one live snippet carries, by name.
func (r *SQLiteRepository) ListLive(ctx context.Context) ([]*models.Tag, error) {
	return r.list(ctx, "list tags", `
		SELECT t.id, t.name, t.deleted, t.last_updated FROM tags t
		WHERE t.deleted = 0 AND EXISTS (
			SELECT 1 FROM snippet_tags st JOIN snippets s ON s.id = st.snippet_id
			WHERE st.tag_id = t.id AND st.deleted = 0 AND s.deleted = 0
		)
		ORDER BY t.name`)
}

func (r *SQLiteRepository) SelectUpdated(ctx context.Context, since int64) ([]*models.Tag, error) {
	return r.list(ctx, "select updated tags",
		`SELECT id, name, deleted, last_updated FROM tags WHERE last_updated > ? ORDER BY id`, since)
}

func (r *SQLiteRepository) MaxLastUpdated(ctx context.Context) (int64, error) {
	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(last_updated) FROM tags`).Scan(&v); err != nil {
		return 0, common.E(common.StorageFailure, "max tag stamp", err)
	}
	return v.Int64, nil
}
