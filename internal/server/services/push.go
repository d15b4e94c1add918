// Package services holds snipd's business logic.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/dmitrijs2005/snip/internal/server/archive"
	"github.com/dmitrijs2005/snip/internal/server/models"
	"github.com/dmitrijs2005/snip/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/wire"
	"github.com/google/uuid"
)

var ErrNoUser = errors.New("push without user")

// PushService merges pushed change sets into the per-user replica.
type PushService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	archiver archive.Archiver
	logger   logging.Logger
	newID    func() uuid.UUID
}

func NewPushService(db *sql.DB, repos repomanager.RepositoryManager, archiver archive.Archiver, logger logging.Logger) *PushService {
	if archiver == nil {
		archiver = archive.Nop()
	}
	return &PushService{
		db:       db,
		repos:    repos,
		archiver: archiver,
		logger:   logger.With("module", "push_service"),
		newID:    uuid.New,
	}
}

// Apply merges p for userID last-write-wins and records the push. All rows
// commit together or not at all. It returns how many rows changed the
// replica; re-sending the same change set yields zero.
func (s *PushService) Apply(ctx context.Context, userID string, watermark int64, p *wire.Payload) (int, error) {
	if userID == "" {
		return 0, ErrNoUser
	}
	if p == nil {
		p = &wire.Payload{}
	}

	push := &models.Push{
		ID:        s.newID(),
		UserID:    userID,
		Watermark: watermark,
		Received:  p.Len(),
	}

	// The archive copy is written first so its key lands in the audit row.
	push.ArchiveKey = s.archive(ctx, push, p)

	var live int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		prev, err := s.repos.Pushes(tx).Latest(ctx, userID)
		switch {
		case errors.Is(err, common.NotFound):
		case err != nil:
			return err
		case watermark < prev.Watermark:
			// A client whose store was restored from an older copy resends
			// rows the replica already has; the merge ignores them.
			s.logger.Warn(ctx, "watermark behind last push",
				"user", userID, "watermark", watermark, "last", prev.Watermark, "last_push", prev.ID)
		}

		n, err := s.repos.Snippets(tx).Upsert(ctx, userID, p.Snippets)
		if err != nil {
			return err
		}
		push.Accepted += n

		if n, err = s.repos.Tags(tx).Upsert(ctx, userID, p.Tags); err != nil {
			return err
		}
		push.Accepted += n

		if n, err = s.repos.SnippetTags(tx).Upsert(ctx, userID, p.SnippetTags); err != nil {
			return err
		}
		push.Accepted += n

		if live, err = s.repos.Snippets(tx).CountLive(ctx, userID); err != nil {
			return err
		}

		return s.repos.Pushes(tx).Create(ctx, push)
	})
	if err != nil {
		return 0, common.E(common.StorageFailure, "apply push", err)
	}

	s.logger.Info(ctx, "push applied",
		"user", userID, "push", push.ID, "received", push.Received, "accepted", push.Accepted, "watermark", watermark, "live_snippets", live)
	return push.Accepted, nil
}

func (s *PushService) archive(ctx context.Context, push *models.Push, p *wire.Payload) string {
	b, err := wire.EncodePayload(p)
	if err != nil {
		s.logger.Warn(ctx, "archive skipped", "push", push.ID, "error", err)
		return ""
	}
	key, err := s.archiver.Archive(ctx, push.UserID, push.ID, b)
	if err != nil {
		s.logger.Warn(ctx, "archive failed", "push", push.ID, "error", fmt.Errorf("archive: %w", err))
		return ""
	}
	return key
}
