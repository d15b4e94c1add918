package snippets

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/wire"
)

type Repository interface {
	// Upsert merges rows for userID last-write-wins and returns how many
	// were inserted or replaced.
	Upsert(ctx context.Context, userID string, rows []wire.SnippetRow) (int, error)
	CountLive(ctx context.Context, userID string) (int, error)
}
