package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/snip/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/dbx"
)

// Clock returns the current wall time.
type Clock func() time.Time

// nextStamp returns the last_updated value for a mutation running in tx. It is
// the wall clock in unix seconds, bumped past every stamp already stored so
// that successive mutations are strictly ordered even within one second.
func nextStamp(ctx context.Context, repos repomanager.RepositoryManager, tx dbx.DBTX, now Clock) (int64, error) {
	stamp := now().Unix()

	maxes := []func(context.Context) (int64, error){
		repos.Snippets(tx).MaxLastUpdated,
		repos.Tags(tx).MaxLastUpdated,
		repos.SnippetTags(tx).MaxLastUpdated,
	}
	for _, maxOf := range maxes {
		m, err := maxOf(ctx)
		if err != nil {
			return 0, err
		}
		if m >= stamp {
			stamp = m + 1
		}
	}
	return stamp, nil
}

// normalizeTags trims names, drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
