package pushes

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Push) error
	// Latest returns the most recent push of userID or common.NotFound.
	Latest(ctx context.Context, userID string) (*models.Push, error)
}
