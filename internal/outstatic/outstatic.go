// Package outstatic models the content layout consumed by the Outstatic-based
// site renderer: the per-post Markdown files under the blogs collection and
// the aggregate metadata index file.
package outstatic

import (
	"encoding/json"
	"path"

	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
)

// Collection is the fixed collection name all generated posts belong to.
const Collection = "blogs"

// EntryAuthor mirrors the author object inside an index entry.
type EntryAuthor struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// OutstaticRef duplicates the entry path under the renderer's reserved key.
type OutstaticRef struct {
	Path string `json:"path"`
}

// IndexEntry is one published post's summary record in the metadata index.
// Field order matches the renderer's existing files.
type IndexEntry struct {
	Category    string       `json:"category"`
	Collection  string       `json:"collection"`
	CoverImage  string       `json:"coverImage"`
	Description string       `json:"description"`
	PublishedAt string       `json:"publishedAt"`
	Slug        string       `json:"slug"`
	Status      string       `json:"status"`
	Title       string       `json:"title"`
	Path        string       `json:"path"`
	Author      EntryAuthor  `json:"author"`
	Outstatic   OutstaticRef `json:"__outstatic"`
}

// Index is the aggregate metadata file. Append-only; entries are never
// deduplicated against existing slugs.
type Index struct {
	Metadata []IndexEntry `json:"metadata"`
}

// NewIndex returns an empty index with a non-nil entry slice so that it
// serializes as {"metadata": []} rather than null.
func NewIndex() *Index {
	return &Index{Metadata: []IndexEntry{}}
}

// ParseIndex decodes a metadata index file.
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	if idx.Metadata == nil {
		idx.Metadata = []IndexEntry{}
	}
	return &idx, nil
}

// Append adds an entry to the index.
func (i *Index) Append(entry IndexEntry) {
	i.Metadata = append(i.Metadata, entry)
}

// Marshal serializes the index with two-space indentation, matching the files
// the renderer writes itself.
func (i *Index) Marshal() ([]byte, error) {
	return json.MarshalIndent(i, "", "  ")
}

// PostPath returns the repository path for a post with the given slug.
func PostPath(contentDir, slug string) string {
	return path.Join(contentDir, slug+".md")
}

// EntryFromPost derives an index entry from parsed post frontmatter and the
// post's repository path.
func EntryFromPost(p frontmatter.Post, postPath string) IndexEntry {
	return IndexEntry{
		Category:    p.Category,
		Collection:  Collection,
		CoverImage:  p.CoverImage,
		Description: p.Description,
		PublishedAt: p.PublishedAt,
		Slug:        p.Slug,
		Status:      p.Status,
		Title:       p.Title,
		Path:        postPath,
		Author:      EntryAuthor{Name: p.Author.Name, Picture: p.Author.Picture},
		Outstatic:   OutstaticRef{Path: postPath},
	}
}
