package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/snip/internal/client/client"
	"github.com/dmitrijs2005/snip/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/dmitrijs2005/snip/internal/wire"
)

// SyncStatus describes the replication state of the local store.
type SyncStatus struct {
	Enabled    bool
	LastSynced int64
	Pending    int
}

// SyncResult describes one Sync call. From and To are the watermarks before
// and after it; they are equal when nothing was sent.
type SyncResult struct {
	From     int64
	To       int64
	Sent     int
	Accepted int
}

// Pushed reports whether a change set went to the peer.
func (r *SyncResult) Pushed() bool {
	return r != nil && r.Sent > 0
}

// SyncService pushes local changes to the sync peer. It never pulls.
type SyncService interface {
	// Extract returns every row stamped after since, tombstones included,
	// and the watermark a successful push of it advances to.
	Extract(ctx context.Context, since int64) (*wire.Payload, int64, error)
	// Push sends the rows changed after since and returns the new watermark
	// without persisting it. An empty change set is not sent.
	Push(ctx context.Context, since int64) (int64, error)
	// Sync pushes from the stored watermark and stores the new one once the
	// peer has acknowledged.
	Sync(ctx context.Context) (*SyncResult, error)
	Status(ctx context.Context) (*SyncStatus, error)
}

type syncService struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	client  client.Client
	onState client.StateFunc
	logger  logging.Logger
}

type SyncOption func(*syncService)

// WithStateHook observes the terminal state of each Sync call.
func WithStateHook(fn client.StateFunc) SyncOption {
	return func(s *syncService) { s.onState = fn }
}

// NewSyncService builds the sync service. A nil client means sync is disabled
// in this configuration: Push and Sync then fail with common.SyncDisabled.
func NewSyncService(db *sql.DB, repos repomanager.RepositoryManager, c client.Client, logger logging.Logger, opts ...SyncOption) SyncService {
	s := &syncService{
		db:     db,
		repos:  repos,
		client: c,
		logger: logger.With("module", "sync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *syncService) transition(ctx context.Context, st client.State) {
	if st.Terminal() {
		s.logger.Debug(ctx, "sync finished", "state", st.String())
	}
	if s.onState != nil {
		s.onState(st)
	}
}

func (s *syncService) Extract(ctx context.Context, since int64) (*wire.Payload, int64, error) {
	p := &wire.Payload{}

	// One transaction so the three tables are read at the same point in time.
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		snippets, err := s.repos.Snippets(tx).SelectUpdated(ctx, since)
		if err != nil {
			return err
		}
		for _, r := range snippets {
			p.Snippets = append(p.Snippets, wire.SnippetRow{
				ID: r.ID, Name: r.Name, Content: r.Content, Deleted: r.Deleted, LastUpdated: r.LastUpdated,
			})
		}

		tags, err := s.repos.Tags(tx).SelectUpdated(ctx, since)
		if err != nil {
			return err
		}
		for _, r := range tags {
			p.Tags = append(p.Tags, wire.TagRow{
				ID: r.ID, Name: r.Name, Deleted: r.Deleted, LastUpdated: r.LastUpdated,
			})
		}

		links, err := s.repos.SnippetTags(tx).SelectUpdated(ctx, since)
		if err != nil {
			return err
		}
		for _, r := range links {
			p.SnippetTags = append(p.SnippetTags, wire.SnippetTagRow{
				ID: r.ID, SnippetID: r.SnippetID, TagID: r.TagID, Deleted: r.Deleted, LastUpdated: r.LastUpdated,
			})
		}
		return nil
	})
	if err != nil {
		if common.KindOf(err) == common.Unknown {
			err = common.E(common.StorageFailure, "transaction", err)
		}
		return nil, since, fmt.Errorf("extract changes: %w", err)
	}

	watermark := since
	if m := p.MaxLastUpdated(); m > watermark {
		watermark = m
	}
	return p, watermark, nil
}

func (s *syncService) Push(ctx context.Context, since int64) (int64, error) {
	res, err := s.push(ctx, since)
	if err != nil {
		return since, err
	}
	return res.To, nil
}

func (s *syncService) push(ctx context.Context, since int64) (*SyncResult, error) {
	res := &SyncResult{From: since, To: since}
	if s.client == nil {
		return res, common.E(common.SyncDisabled, "push", nil)
	}

	p, watermark, err := s.Extract(ctx, since)
	if err != nil {
		return res, err
	}
	if p.Len() == 0 {
		s.logger.Debug(ctx, "nothing to push", "since", since)
		return res, nil
	}

	accepted, err := s.client.Push(ctx, since, p)
	if err != nil {
		return res, fmt.Errorf("push changes: %w", err)
	}
	s.logger.Info(ctx, "changes pushed", "rows", p.Len(), "accepted", accepted, "watermark", watermark)

	res.To, res.Sent, res.Accepted = watermark, p.Len(), accepted
	return res, nil
}

func (s *syncService) lastSynced(ctx context.Context, db dbx.DBTX) (int64, error) {
	raw, err := s.repos.Metadata(db).Get(ctx, common.MetadataKeyLastSynced)
	if err != nil {
		return 0, err
	}
	w, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.E(common.StorageFailure, "parse watermark", err)
	}
	return w, nil
}

func (s *syncService) Sync(ctx context.Context) (*SyncResult, error) {
	if s.client == nil {
		return nil, common.E(common.SyncDisabled, "sync", nil)
	}

	since, err := s.lastSynced(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	res, err := s.push(ctx, since)
	if err != nil {
		s.transition(ctx, client.Failed)
		return res, fmt.Errorf("sync: %w", err)
	}
	if !res.Pushed() {
		// The stored watermark already covers every row.
		s.transition(ctx, client.Committed)
		return res, nil
	}

	err = s.repos.Metadata(s.db).Set(ctx, common.MetadataKeyLastSynced, strconv.FormatInt(res.To, 10))
	if err != nil {
		s.transition(ctx, client.Failed)
		res.To = since
		return res, fmt.Errorf("sync: store watermark: %w", err)
	}

	s.transition(ctx, client.Committed)
	s.logger.Debug(ctx, "watermark committed", "from", since, "to", res.To)
	return res, nil
}

func (s *syncService) Status(ctx context.Context) (*SyncStatus, error) {
	since, err := s.lastSynced(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("sync status: %w", err)
	}
	p, _, err := s.Extract(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("sync status: %w", err)
	}
	return &SyncStatus{Enabled: s.client != nil, LastSynced: since, Pending: p.Len()}, nil
}
