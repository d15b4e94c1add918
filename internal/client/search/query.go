// Package search builds the filtered read queries over the local store.
//
// A Query selects live snippets. The name filter is a case-sensitive
// substring match. Each tag filter must match (as a substring) the name of a
// tag the snippet carries through a live link, and all tag filters must match:
// tags are conjunctive. When both a name and tags are given the result is the
// intersection of the two.
package search

import (
	"strings"
)

// Query holds the optional filters. An empty Name and empty Tags mean "all".
// Name is matched verbatim, surrounding spaces included.
type Query struct {
	Name string
	Tags []string
}

// Normalize trims the tag filters, drops blank ones and removes duplicates
// while keeping the first occurrence order. Name is left untouched.
func (q Query) Normalize() Query {
	out := Query{Name: q.Name}
	seen := make(map[string]struct{}, len(q.Tags))
	for _, tag := range q.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out.Tags = append(out.Tags, tag)
	}
	return out
}

const selectLive = `SELECT s.id, s.name, s.content, s.deleted, s.last_updated
FROM snippets s
WHERE s.deleted = 0`

const tagClause = `
  AND EXISTS (
    SELECT 1 FROM snippet_tags st
    JOIN tags t ON t.id = st.tag_id
    WHERE st.snippet_id = s.id AND st.deleted = 0 AND t.deleted = 0 AND instr(t.name, ?) > 0
  )`

// Build renders q into SQL and its positional arguments. Rows come back in id
// order, each snippet at most once.
func Build(q Query) (string, []any) {
	q = q.Normalize()

	var b strings.Builder
	args := make([]any, 0, 1+len(q.Tags))

	b.WriteString(selectLive)
	if q.Name != "" {
		b.WriteString("\n  AND instr(s.name, ?) > 0")
		args = append(args, q.Name)
	}
	for _, tag := range q.Tags {
		b.WriteString(tagClause)
		args = append(args, tag)
	}
	b.WriteString("\nORDER BY s.id")

	return b.String(), args
}
