// Package models holds the records snipd persists besides the replicated rows.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Push is the audit record of one accepted sync push.
type Push struct {
	ID         uuid.UUID
	UserID     string
	Watermark  int64
	Received   int
	Accepted   int
	ArchiveKey string
	CreatedAt  time.Time
}
