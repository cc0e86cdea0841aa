package frontmatter

// Default values substituted for fields the model left out of the
// frontmatter block. A document with no block at all yields all defaults.
const (
	DefaultTitle    = "Untitled"
	DefaultStatus   = "draft"
	DefaultCategory = "Uncategorized"
	DefaultSlug     = "default-slug"
)

// Author is the byline embedded in a post's frontmatter.
type Author struct {
	Name    string
	Picture string
}

// Post is the typed view of a generated post's frontmatter. It is populated
// from the parsed mapping with defaults applied; no schema validation beyond
// that takes place.
type Post struct {
	Title       string
	Status      string
	Author      Author
	Slug        string
	Description string
	CoverImage  string
	Category    string
	PublishedAt string
}

// PostFromFields builds a Post from a parsed frontmatter mapping, substituting
// defaults for absent or non-string fields.
func PostFromFields(fields map[string]any) Post {
	p := Post{
		Title:       stringField(fields, "title", DefaultTitle),
		Status:      stringField(fields, "status", DefaultStatus),
		Slug:        stringField(fields, "slug", DefaultSlug),
		Description: stringField(fields, "description", ""),
		CoverImage:  stringField(fields, "coverImage", ""),
		Category:    stringField(fields, "category", DefaultCategory),
		PublishedAt: stringField(fields, "publishedAt", ""),
	}

	if author, ok := fields["author"].(map[string]any); ok {
		p.Author.Name = stringField(author, "name", "")
		p.Author.Picture = stringField(author, "picture", "")
	}

	return p
}

func stringField(fields map[string]any, key, fallback string) string {
	if v, ok := fields[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
