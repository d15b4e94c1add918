// Package wire implements the sync stream format shared by the snip client
// and the snipd peer:
//
//	<token>\n
//	<watermark>\n
//	<payload length in bytes>\n
//	<payload bytes>
//
// followed by a single JSON line sent back by the peer. A response carrying an
// "error" field is a rejection; anything else is an acknowledgement.
package wire

// SnippetRow is the serialized form of a snippet row, tombstones included.
type SnippetRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Content     string `json:"content"`
	Deleted     bool   `json:"deleted"`
	LastUpdated int64  `json:"last_updated"`
}

type TagRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Deleted     bool   `json:"deleted"`
	LastUpdated int64  `json:"last_updated"`
}

type SnippetTagRow struct {
	ID          int64 `json:"id"`
	SnippetID   int64 `json:"snippet_id"`
	TagID       int64 `json:"tag_id"`
	Deleted     bool  `json:"deleted"`
	LastUpdated int64 `json:"last_updated"`
}

// Payload is the delta pushed in one sync attempt.
type Payload struct {
	Snippets    []SnippetRow    `json:"snippets"`
	Tags        []TagRow        `json:"tags"`
	SnippetTags []SnippetTagRow `json:"snippet_tags"`
}

// Len returns the total number of rows carried.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Snippets) + len(p.Tags) + len(p.SnippetTags)
}

// MaxLastUpdated returns the greatest last_updated in the payload, or 0.
func (p *Payload) MaxLastUpdated() int64 {
	var max int64
	if p == nil {
		return max
	}
	for _, r := range p.Snippets {
		if r.LastUpdated > max {
			max = r.LastUpdated
		}
	}
	for _, r := range p.Tags {
		if r.LastUpdated > max {
			max = r.LastUpdated
		}
	}
	for _, r := range p.SnippetTags {
		if r.LastUpdated > max {
			max = r.LastUpdated
		}
	}
	return max
}
