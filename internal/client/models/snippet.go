// Package models defines the rows of the local snippet store.
package models

import "time"

// Snippet is a named text blob. Name is unique among live snippets only;
// tombstones (Deleted) are kept so deletions propagate on sync.
type Snippet struct {
	ID          int64
	Name        string
	Content     string
	Deleted     bool
	LastUpdated int64

	// Tags holds the names of the tags carried through live links. It is
	// filled by reads that load tags and is not a column.
	Tags []string
}

// UpdatedAt returns LastUpdated as a time.
func (s *Snippet) UpdatedAt() time.Time {
	return time.Unix(s.LastUpdated, 0)
}

// Tag is shared vocabulary; its name is unique regardless of Deleted.
type Tag struct {
	ID          int64
	Name        string
	Deleted     bool
	LastUpdated int64
}

// SnippetTag links a snippet to a tag. The (SnippetID, TagID) pair is unique;
// removing and re-adding a tag flips Deleted on the same row.
type SnippetTag struct {
	ID          int64
	SnippetID   int64
	TagID       int64
	Deleted     bool
	LastUpdated int64
}
