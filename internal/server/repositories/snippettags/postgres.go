// Package snippettags stores replicated snippet/tag links in PostgreSQL.
// Links reference ids of the same user; they are not foreign keys because a
// delta may carry a link before the row it points to.
package snippettags

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/wire"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const upsertQuery = `
	INSERT INTO snippet_tags (user_id, id, snippet_id, tag_id, deleted, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, id) DO UPDATE
	SET snippet_id = excluded.snippet_id,
		tag_id = excluded.tag_id,
		deleted = excluded.deleted,
		last_updated = excluded.last_updated
	WHERE excluded.last_updated > snippet_tags.last_updated
`

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, rows []wire.SnippetTagRow) (int, error) {
	accepted := 0
	for _, row := range rows {
		res, err := r.db.ExecContext(ctx, upsertQuery,
			userID, row.ID, row.SnippetID, row.TagID, row.Deleted, row.LastUpdated)
		if err != nil {
			return accepted, fmt.Errorf("upsert snippet tag %d: %w", row.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return accepted, fmt.Errorf("rows affected: %w", err)
		}
		accepted += int(n)
	}
	return accepted, nil
}
