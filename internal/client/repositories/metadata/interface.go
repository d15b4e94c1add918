// Package metadata stores the small key/value state of the local store, such
// as the sync watermark.
package metadata

import (
	"context"
)

type Repository interface {
	// Get fails with common.UnknownMetadataKey when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
