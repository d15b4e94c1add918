// Package tags stores replicated tag rows in PostgreSQL.
package tags

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
	INSERT INTO tags (user_id, id, name, deleted, last_updated)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, id) DO UPDATE
	SET name = excluded.name,
		deleted = excluded.deleted,
		last_updated = excluded.last_updated
	WHERE excluded.last_updated > tags.last_updated
`

// Upsert merges rows last-write-wins and returns the number applied.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, rows []wire.TagRow) (int, error) {
	accepted := 0
	for _, row := range rows {
		res, err := r.db.ExecContext(ctx, upsertQuery, userID, row.ID, row.Name, row.Deleted, row.LastUpdated)
		if err != nil {
			return accepted, fmt.Errorf("upsert tag %d: %w", row.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return accepted, fmt.Errorf("rows affected: %w", err)
		}
		accepted += int(n)
	}
	return accepted, nil
}
