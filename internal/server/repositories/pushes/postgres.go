// Package pushes keeps the audit trail of accepted sync pushes.
package pushes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Push) error {
	query := `
		INSERT INTO pushes (id, user_id, watermark, received, accepted, archive_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Watermark, p.Received, p.Accepted, p.ArchiveKey,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert push: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*models.Push, error) {
	query := `
		SELECT id, user_id, watermark, received, accepted, archive_key, created_at
		FROM pushes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	p := &models.Push{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Watermark, &p.Received, &p.Accepted, &p.ArchiveKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.E(common.NotFound, "latest push", err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
