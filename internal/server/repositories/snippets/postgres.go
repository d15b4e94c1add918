// Package snippets stores replicated snippet rows in PostgreSQL, one set per
// user.
package snippets

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

// A row replaces the stored one only when it is strictly newer, so a delta
// sent twice changes nothing the second time.
const upsertQuery = `
	INSERT INTO snippets (user_id, id, name, content, deleted, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, id) DO UPDATE
	SET name = excluded.name,
		content = excluded.content,
		deleted = excluded.deleted,
		last_updated = excluded.last_updated
	WHERE excluded.last_updated > snippets.last_updated
`

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, rows []wire.SnippetRow) (int, error) {
	accepted := 0
	for _, row := range rows {
		res, err := r.db.ExecContext(ctx, upsertQuery,
			userID, row.ID, row.Name, row.Content, row.Deleted, row.LastUpdated)
		if err != nil {
			return accepted, fmt.Errorf("upsert snippet %d: %w", row.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return accepted, fmt.Errorf("rows affected: %w", err)
		}
		accepted += int(n)
	}
	return accepted, nil
}

func (r *PostgresRepository) CountLive(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT count(*)
		FROM snippets
		WHERE user_id = $1 AND NOT deleted
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
