package snippettags

import (
	"context"
	"database/sql"
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

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Link(ctx context.Context, snippetID, tagID, stamp int64) (bool, error) {
	op := fmt.Sprintf("link snippet %d to tag %d", snippetID, tagID)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO snippet_tags (snippet_id, tag_id, deleted, last_updated) VALUES (?, ?, 0, ?)
		ON CONFLICT(snippet_id, tag_id) DO UPDATE
			SET deleted = 0, last_updated = excluded.last_updated
			WHERE snippet_tags.deleted = 1`,
		snippetID, tagID, stamp)
	if err != nil {
		return false, common.E(common.StorageFailure, op, err)
	}
	n, err := affected(res)
	if err != nil {
		return false, common.E(common.StorageFailure, op, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Unlink(ctx context.Context, snippetID, tagID, stamp int64) (bool, error) {
	op := fmt.Sprintf("unlink snippet %d from tag %d", snippetID, tagID)
	res, err := r.db.ExecContext(ctx, `
		UPDATE snippet_tags SET deleted = 1, last_updated = ?
		WHERE snippet_id = ? AND tag_id = ? AND deleted = 0`,
		stamp, snippetID, tagID)
	if err != nil {
		return false, common.E(common.StorageFailure, op, err)
	}
	n, err := affected(res)
	if err != nil {
		return false, common.E(common.StorageFailure, op, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) UnlinkAll(ctx context.Context, snippetID, stamp int64) (int64, error) {
	op := fmt.Sprintf("unlink tags of snippet %d", snippetID)
	res, err := r.db.ExecContext(ctx, `
		UPDATE snippet_tags SET deleted = 1, last_updated = ?
		WHERE snippet_id = ? AND deleted = 0`,
		stamp, snippetID)
	if err != nil {
		return 0, common.E(common.StorageFailure, op, err)
	}
	n, err := affected(res)
	if err != nil {
		return 0, common.E(common.StorageFailure, op, err)
	}
	return n, nil
}

// TagNames lists the names of live tags linked to the snippet by live links.
func (r *SQLiteRepository) TagNames(ctx context.Context, snippetID int64) ([]string, error) {
	op := fmt.Sprintf("tags of snippet %d", snippetID)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name FROM snippet_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.snippet_id = ? AND st.deleted = 0 AND t.deleted = 0
		ORDER BY t.name`, snippetID)
	if err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, common.E(common.StorageFailure, op, fmt.Errorf("scan: %w", err))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	return names, nil
}

func (r *SQLiteRepository) SelectUpdated(ctx context.Context, since int64) ([]*models.SnippetTag, error) {
	const op = "select updated snippet tags"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, snippet_id, tag_id, deleted, last_updated FROM snippet_tags
		WHERE last_updated > ? ORDER BY id`, since)
	if err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	defer rows.Close()

	var result []*models.SnippetTag
	for rows.Next() {
		var st models.SnippetTag
		if err := rows.Scan(&st.ID, &st.SnippetID, &st.TagID, &st.Deleted, &st.LastUpdated); err != nil {
			return nil, common.E(common.StorageFailure, op, fmt.Errorf("scan: %w", err))
		}
		result = append(result, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	return result, nil
}

func (r *SQLiteRepository) MaxLastUpdated(ctx context.Context) (int64, error) {
	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(last_updated) FROM snippet_tags`).Scan(&v); err != nil {
		return 0, common.E(common.StorageFailure, "max snippet tag stamp", err)
	}
	return v.Int64, nil
}
