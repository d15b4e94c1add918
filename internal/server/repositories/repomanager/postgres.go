// Package repomanager provides the PostgreSQL RepositoryManager of snipd,
// vending repositories bound to a DBTX and running goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/server/migrations"
	"github.com/dmitrijs2005/snip/internal/server/repositories/pushes"
	"github.com/dmitrijs2005/snip/internal/server/repositories/snippets"
	"github.com/dmitrijs2005/snip/internal/server/repositories/snippettags"
	"github.com/dmitrijs2005/snip/internal/server/repositories/tags"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Snippets(db dbx.DBTX) snippets.Repository {
	return snippets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tags(db dbx.DBTX) tags.Repository {
	return tags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SnippetTags(db dbx.DBTX) snippettags.Repository {
	return snippettags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Pushes(db dbx.DBTX) pushes.Repository {
	return pushes.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations with the pgx dialect.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Open connects to dsn through pgx and migrates the schema.
func Open(ctx context.Context, dsn string, m RepositoryManager) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
