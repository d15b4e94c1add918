package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/snip/internal/client/models"
	"github.com/dmitrijs2005/snip/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/client/search"
	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/logging"
)

// SnippetService is the record store. Every mutating call runs in its own
// transaction and stamps all rows it touches with one fresh timestamp.
type SnippetService interface {
	// Add creates a snippet, or brings back the newest deleted snippet with
	// the same name. It fails with common.DuplicateName when a live snippet
	// already holds the name.
	Add(ctx context.Context, name, content string, tags []string) (int64, error)
	Get(ctx context.Context, id int64) (*models.Snippet, error)
	Search(ctx context.Context, q search.Query) ([]*models.Snippet, error)
	Rename(ctx context.Context, id int64, name string) error
	SetContent(ctx context.Context, id int64, content string) error
	AddTags(ctx context.Context, id int64, tags []string) error
	RemoveTags(ctx context.Context, id int64, tags []string) error
	// Retag makes tags the exact live tag set of the snippet.
	Retag(ctx context.Context, id int64, tags []string) error
	// Delete tombstones the snippet and its tag links. Tags are kept.
	Delete(ctx context.Context, id int64) error
	// Tags lists the names of tags carried by live snippets.
	Tags(ctx context.Context) ([]string, error)
}

type snippetService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	now    Clock
	logger logging.Logger
}

type SnippetOption func(*snippetService)

// WithClock replaces the wall clock used for stamping.
func WithClock(now Clock) SnippetOption {
	return func(s *snippetService) { s.now = now }
}

func NewSnippetService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger, opts ...SnippetOption) SnippetService {
	s := &snippetService{
		db:     db,
		repos:  repos,
		now:    time.Now,
		logger: logger.With("module", "snippets"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate runs fn in a transaction with a freshly allocated stamp.
func (s *snippetService) mutate(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX, stamp int64) error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stamp, err := nextStamp(ctx, s.repos, tx, s.now)
		if err != nil {
			return err
		}
		return fn(ctx, tx, stamp)
	})
	if err != nil && common.KindOf(err) == common.Unknown {
		// begin/commit failures come back untagged from dbx
		return common.E(common.StorageFailure, "transaction", err)
	}
	return err
}

func (s *snippetService) Add(ctx context.Context, name, content string, tags []string) (int64, error) {
	var id int64
	var resurrected bool

	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		snippets := s.repos.Snippets(tx)

		_, err := snippets.GetLiveByName(ctx, name)
		if err == nil {
			return common.E(common.DuplicateName, fmt.Sprintf("add %q", name), nil)
		}
		if !errors.Is(err, common.NotFound) {
			return err
		}

		tomb, err := snippets.GetNewestTombstoneByName(ctx, name)
		switch {
		case err == nil:
			if err := snippets.Resurrect(ctx, tomb.ID, content, stamp); err != nil {
				return err
			}
			id, resurrected = tomb.ID, true
		case errors.Is(err, common.NotFound):
			id, err = snippets.Insert(ctx, name, content, stamp)
			if err != nil {
				return err
			}
		default:
			return err
		}

		return s.addTags(ctx, tx, id, normalizeTags(tags), stamp)
	})
	if err != nil {
		return 0, fmt.Errorf("add snippet: %w", err)
	}

	s.logger.Debug(ctx, "snippet added", "id", id, "resurrected", resurrected)
	return id, nil
}

func (s *snippetService) load(ctx context.Context, db dbx.DBTX, sn *models.Snippet) error {
	names, err := s.repos.SnippetTags(db).TagNames(ctx, sn.ID)
	if err != nil {
		return err
	}
	sn.Tags = names
	return nil
}

func (s *snippetService) Get(ctx context.Context, id int64) (*models.Snippet, error) {
	sn, err := s.repos.Snippets(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get snippet: %w", err)
	}
	if err := s.load(ctx, s.db, sn); err != nil {
		return nil, fmt.Errorf("get snippet: %w", err)
	}
	return sn, nil
}

func (s *snippetService) Search(ctx context.Context, q search.Query) ([]*models.Snippet, error) {
	found, err := s.repos.Snippets(s.db).Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for _, sn := range found {
		if err := s.load(ctx, s.db, sn); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
	}
	return found, nil
}

func (s *snippetService) Rename(ctx context.Context, id int64, name string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		snippets := s.repos.Snippets(tx)
		if _, err := snippets.GetByID(ctx, id); err != nil {
			return err
		}

		holder, err := snippets.GetLiveByName(ctx, name)
		switch {
		case err == nil && holder.ID != id:
			return common.E(common.DuplicateName, fmt.Sprintf("rename to %q", name), nil)
		case err != nil && !errors.Is(err, common.NotFound):
			return err
		}
		return snippets.Rename(ctx, id, name, stamp)
	})
	if err != nil {
		return fmt.Errorf("rename snippet: %w", err)
	}
	return nil
}

func (s *snippetService) SetContent(ctx context.Context, id int64, content string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		return s.repos.Snippets(tx).SetContent(ctx, id, content, stamp)
	})
	if err != nil {
		return fmt.Errorf("edit snippet: %w", err)
	}
	return nil
}

func (s *snippetService) addTags(ctx context.Context, tx dbx.DBTX, id int64, names []string, stamp int64) error {
	tags, links := s.repos.Tags(tx), s.repos.SnippetTags(tx)
	for _, name := range names {
		tagID, err := tags.Ensure(ctx, name, stamp)
		if err != nil {
			return err
		}
		if _, err := links.Link(ctx, id, tagID, stamp); err != nil {
			return err
		}
	}
	return nil
}

func (s *snippetService) removeTags(ctx context.Context, tx dbx.DBTX, id int64, names []string, stamp int64) error {
	tags, links := s.repos.Tags(tx), s.repos.SnippetTags(tx)
	for _, name := range names {
		tag, err := tags.GetByName(ctx, name)
		if errors.Is(err, common.NotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := links.Unlink(ctx, id, tag.ID, stamp); err != nil {
			return err
		}
	}
	return nil
}

func (s *snippetService) AddTags(ctx context.Context, id int64, tags []string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		if _, err := s.repos.Snippets(tx).GetByID(ctx, id); err != nil {
			return err
		}
		return s.addTags(ctx, tx, id, normalizeTags(tags), stamp)
	})
	if err != nil {
		return fmt.Errorf("tag snippet: %w", err)
	}
	return nil
}

func (s *snippetService) RemoveTags(ctx context.Context, id int64, tags []string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		if _, err := s.repos.Snippets(tx).GetByID(ctx, id); err != nil {
			return err
		}
		return s.removeTags(ctx, tx, id, normalizeTags(tags), stamp)
	})
	if err != nil {
		return fmt.Errorf("untag snippet: %w", err)
	}
	return nil
}

func (s *snippetService) Retag(ctx context.Context, id int64, tags []string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		if _, err := s.repos.Snippets(tx).GetByID(ctx, id); err != nil {
			return err
		}
		current, err := s.repos.SnippetTags(tx).TagNames(ctx, id)
		if err != nil {
			return err
		}

		want := normalizeTags(tags)
		keep := make(map[string]struct{}, len(want))
		for _, t := range want {
			keep[t] = struct{}{}
		}
		var drop []string
		for _, t := range current {
			if _, ok := keep[t]; !ok {
				drop = append(drop, t)
			}
		}

		if err := s.removeTags(ctx, tx, id, drop, stamp); err != nil {
			return err
		}
		return s.addTags(ctx, tx, id, want, stamp)
	})
	if err != nil {
		return fmt.Errorf("retag snippet: %w", err)
	}
	return nil
}

func (s *snippetService) Delete(ctx context.Context, id int64) error {
	var unlinked int64
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, stamp int64) error {
		if err := s.repos.Snippets(tx).MarkDeleted(ctx, id, stamp); err != nil {
			return err
		}
		n, err := s.repos.SnippetTags(tx).UnlinkAll(ctx, id, stamp)
		unlinked = n
		return err
	})
	if err != nil {
		return fmt.Errorf("delete snippet: %w", err)
	}
	s.logger.Debug(ctx, "snippet deleted", "id", id, "links", unlinked)
	return nil
}

func (s *snippetService) Tags(ctx context.Context) ([]string, error) {
	list, err := s.repos.Tags(s.db).ListLive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name)
	}
	return names, nil
}
