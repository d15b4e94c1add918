// Package repomanager vends the SQLite-backed repositories of the local store
// and owns opening the database file and migrating its schema (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/snip/internal/client/migrations"
	"github.com/dmitrijs2005/snip/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/snip/internal/client/repositories/snippets"
	"github.com/dmitrijs2005/snip/internal/client/repositories/snippettags"
	"github.com/dmitrijs2005/snip/internal/client/repositories/tags"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends repositories bound to a DBTX.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Snippets(db dbx.DBTX) snippets.Repository {
	return snippets.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Tags(db dbx.DBTX) tags.Repository {
	return tags.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) SnippetTags(db dbx.DBTX) snippettags.Repository {
	return snippettags.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations. Running it on an
// up-to-date database is a no-op.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DSN builds the driver connection string for the database file at path.
// Foreign keys are enforced and write transactions take the lock up front so
// two writers never interleave.
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Open creates the parent directory of path if needed, opens the database and
// brings its schema up to date.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, common.E(common.StorageFailure, "create data directory", err)
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, common.E(common.StorageFailure, "open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, common.E(common.StorageFailure, "open database", err)
	}

	if err := NewSQLiteRepositoryManager().RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, common.E(common.StorageFailure, "open database", err)
	}
	return db, nil
}
