package snippettags

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/wire"
)

type Repository interface {
	Upsert(ctx context.Context, userID string, rows []wire.SnippetTagRow) (int, error)
}
