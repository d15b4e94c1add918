package tags

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/wire"
)

type Repository interface {
	Upsert(ctx context.Context, userID string, rows []wire.TagRow) (int, error)
}
