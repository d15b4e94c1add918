// Package snippets persists snippet rows in the local SQLite store.
//
// Reads of "live" rows ignore tombstones. Every mutation takes the logical
// stamp to write into last_updated; choosing the stamp is the caller's job.
package snippets

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/client/models"
	"github.com/dmitrijs2005/snip/internal/client/search"
)

type Repository interface {
	Insert(ctx context.Context, name, content string, stamp int64) (int64, error)
	GetLiveByName(ctx context.Context, name string) (*models.Snippet, error)
	GetNewestTombstoneByName(ctx context.Context, name string) (*models.Snippet, error)
	GetByID(ctx context.Context, id int64) (*models.Snippet, error)
	Resurrect(ctx context.Context, id int64, content string, stamp int64) error
	Rename(ctx context.Context, id int64, name string, stamp int64) error
	SetContent(ctx context.Context, id int64, content string, stamp int64) error
	MarkDeleted(ctx context.Context, id int64, stamp int64) error
	Search(ctx context.Context, q search.Query) ([]*models.Snippet, error)
	SelectUpdated(ctx context.Context, since int64) ([]*models.Snippet, error)
	MaxLastUpdated(ctx context.Context) (int64, error)
}
