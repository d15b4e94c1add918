// Package snippettags persists the links between snippets and tags.
//
// A (snippet, tag) pair owns exactly one row for its whole life. Unlinking
// tombstones the row and linking again revives it, so the pair never
// duplicates and the change still propagates on sync.
package snippettags

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/client/models"
)

type Repository interface {
	// Link makes the pair live and reports whether anything changed. An
	// already-live link is left untouched.
	Link(ctx context.Context, snippetID, tagID, stamp int64) (bool, error)
	// Unlink tombstones a live link and reports whether one existed.
	Unlink(ctx context.Context, snippetID, tagID, stamp int64) (bool, error)
	// UnlinkAll tombstones every live link of the snippet.
	UnlinkAll(ctx context.Context, snippetID, stamp int64) (int64, error)
	TagNames(ctx context.Context, snippetID int64) ([]string, error)
	SelectUpdated(ctx context.Context, since int64) ([]*models.SnippetTag, error)
	MaxLastUpdated(ctx context.Context) (int64, error)
}
