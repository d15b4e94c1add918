// Package tags persists the shared tag vocabulary of the local store.
package tags

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/client/models"
)

type Repository interface {
	// Ensure returns the id of the tag with the given name, creating it or
	// reviving its tombstone as needed.
	Ensure(ctx context.Context, name string, stamp int64) (int64, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	ListLive(ctx context.Context) ([]*models.Tag, error)
	SelectUpdated(ctx context.Context, since int64) ([]*models.Tag, error)
	MaxLastUpdated(ctx context.Context) (int64, error)
}
