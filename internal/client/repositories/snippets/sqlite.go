package snippets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/client/models"
	"github.com/dmitrijs2005/snip/internal/client/search"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const columns = `id, name, content, deleted, last_updated`

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row scanner) (*models.Snippet, error) {
	var s models.Snippet
	if err := row.Scan(&s.ID, &s.Name, &s.Content, &s.Deleted, &s.LastUpdated); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) queryOne(ctx context.Context, op, query string, args ...any) (*models.Snippet, error) {
	s, err := scanSnippet(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.E(common.NotFound, op, nil)
	}
	if err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	return s, nil
}

func (r *SQLiteRepository) queryMany(ctx context.Context, op, query string, args ...any) ([]*models.Snippet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	defer rows.Close()

	var result []*models.Snippet
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, common.E(common.StorageFailure, op, fmt.Errorf("scan: %w", err))
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.E(common.StorageFailure, op, err)
	}
	return result, nil
}

// isUniqueViolation reports whether err came from the live-name index. The
// only constraint a snippet write can trip is that index, so the primary
// result code is enough.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// exec runs a single-row update. A statement that matches nothing maps to
// NotFound, a unique-index hit to DuplicateName.
func (r *SQLiteRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return common.E(common.DuplicateName, op, nil)
	}
	if err != nil {
		return common.E(common.StorageFailure, op, err)
	}
	if err := dbx.ExpectOne(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.E(common.NotFound, op, nil)
		}
		return common.E(common.StorageFailure, op, err)
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, name, content string, stamp int64) (int64, error) {
	op := fmt.Sprintf("insert snippet %q", name)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snippets (name, content, deleted, last_updated) VALUES (?, ?, 0, ?)`,
		name, content, stamp)
	if isUniqueViolation(err) {
		return 0, common.E(common.DuplicateName, op, nil)
	}
	if err != nil {
		return 0, common.E(common.StorageFailure, op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, common.E(common.StorageFailure, op, err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetLiveByName(ctx context.Context, name string) (*models.Snippet, error) {
	return r.queryOne(ctx, fmt.Sprintf("snippet %q", name),
		`SELECT `+columns+` FROM snippets WHERE name = ? AND deleted = 0`, name)
}

// GetNewestTombstoneByName returns the most recently deleted snippet with the
// given name, which is the one a re-add brings back.
func (r *SQLiteRepository) GetNewestTombstoneByName(ctx context.Context, name string) (*models.Snippet, error) {
	return r.queryOne(ctx, fmt.Sprintf("deleted snippet %q", name),
		`SELECT `+columns+` FROM snippets WHERE name = ? AND deleted = 1
		ORDER BY last_updated DESC, id DESC LIMIT 1`, name)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Snippet, error) {
	return r.queryOne(ctx, fmt.Sprintf("snippet %d", id),
		`SELECT `+columns+` FROM snippets WHERE id = ? AND deleted = 0`, id)
}

func (r *SQLiteRepository) Resurrect(ctx context.Context, id int64, content string, stamp int64) error {
	return r.exec(ctx, fmt.Sprintf("resurrect snippet %d", id),
		`UPDATE snippets SET deleted = 0, content = ?, last_updated = ? WHERE id = ? AND deleted = 1`,
		content, stamp, id)
}

func (r *SQLiteRepository) Rename(ctx context.Context, id int64, name string, stamp int64) error {
	return r.exec(ctx, fmt.Sprintf("rename snippet %d", id),
		`UPDATE snippets SET name = ?, last_updated = ? WHERE id = ? AND deleted = 0`,
		name, stamp, id)
}

func (r *SQLiteRepository) SetContent(ctx context.Context, id int64, content string, stamp int64) error {
	return r.exec(ctx, fmt.Sprintf("update snippet %d", id),
		`UPDATE snippets SET content = ?, last_updated = ? WHERE id = ? AND deleted = 0`,
		content, stamp, id)
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id int64, stamp int64) error {
	return r.exec(ctx, fmt.Sprintf("delete snippet %d", id),
		`UPDATE snippets SET deleted = 1, last_updated = ? WHERE id = ? AND deleted = 0`,
		stamp, id)
}

func (r *SQLiteRepository) Search(ctx context.Context, q search.Query) ([]*models.Snippet, error) {
	query, args := search.Build(q)
	return r.queryMany(ctx, "search snippets", query, args...)
}

// SelectUpdated returns every row, tombstones included, stamped after since.
func (r *SQLiteRepository) SelectUpdated(ctx context.Context, since int64) ([]*models.Snippet, error) {
	return r.queryMany(ctx, "select updated snippets",
		`SELECT `+columns+` FROM snippets WHERE last_updated > ? ORDER BY id`, since)
}

func (r *SQLiteRepository) MaxLastUpdated(ctx context.Context) (int64, error) {
	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(last_updated) FROM snippets`).Scan(&v); err != nil {
		return 0, common.E(common.StorageFailure, "max snippet stamp", err)
	}
	return v.Int64, nil
}
