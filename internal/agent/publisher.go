package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	derrors "git.home.luguber.info/inful/blogsmith/internal/errors"
	"git.home.luguber.info/inful/blogsmith/internal/forge"
	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
	"git.home.luguber.info/inful/blogsmith/internal/outstatic"
)

// publish reads the report file, commits the post to the content repository,
// and appends the derived entry to the metadata index.
func (a *Agent) publish(ctx context.Context) (message string, post frontmatter.Post, postPath string, err error) {
	raw, err := os.ReadFile(a.cfg.Agent.ReportPath)
	if err != nil {
		return "", post, "", derrors.Wrap(err, derrors.CategoryFileSystem, "report file missing")
	}
	content := bytes.TrimSpace(raw)

	fm, _, had, err := frontmatter.Split(content)
	if err != nil {
		return "", post, "", derrors.Wrap(err, derrors.CategoryValidation, "malformed frontmatter")
	}

	// A document without a frontmatter block publishes with all defaults.
	fields := map[string]any{}
	if had {
		fields, err = frontmatter.ParseYAML(fm)
		if err != nil {
			return "", post, "", derrors.Wrap(err, derrors.CategoryValidation, "parse frontmatter")
		}
	}
	post = frontmatter.PostFromFields(fields)

	postPath = outstatic.PostPath(a.cfg.Forge.ContentDir, post.Slug)
	commitMsg := fmt.Sprintf("Add %s.md", post.Slug)
	if err := a.repo.CreateFile(ctx, postPath, commitMsg, content); err != nil {
		return "", post, "", derrors.Wrap(err, derrors.CategoryForge, "push failed")
	}

	if err := a.appendIndexEntry(ctx, post, postPath); err != nil {
		return "", post, "", err
	}

	return "Successfully pushed blog post", post, postPath, nil
}

// appendIndexEntry fetches the metadata index, appends the new entry, and
// writes it back. A missing index is the first-run case and starts fresh;
// any other fetch failure aborts so transient auth or network errors are not
// mistaken for an empty repository.
func (a *Agent) appendIndexEntry(ctx context.Context, post frontmatter.Post, postPath string) error {
	idx := outstatic.NewIndex()
	sha := ""

	file, err := a.repo.GetFile(ctx, a.cfg.Forge.MetadataPath)
	switch {
	case err == nil:
		parsed, perr := outstatic.ParseIndex(file.Content)
		if perr != nil {
			return derrors.Wrap(perr, derrors.CategoryForge, "parse metadata index")
		}
		idx = parsed
		sha = file.SHA
	case errors.Is(err, forge.ErrNotFound):
		// First run: no index yet.
	default:
		return derrors.Wrap(err, derrors.CategoryForge, "metadata fetch failed")
	}

	idx.Append(outstatic.EntryFromPost(post, postPath))

	data, err := idx.Marshal()
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryInternal, "marshal metadata index")
	}

	if sha != "" {
		err = a.repo.UpdateFile(ctx, a.cfg.Forge.MetadataPath, "Update metadata", data, sha)
	} else {
		err = a.repo.CreateFile(ctx, a.cfg.Forge.MetadataPath, "Create metadata", data)
	}
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryForge, "metadata update failed")
	}
	return nil
}

// stripFrontmatter returns the body portion of a generated post for advisory
// inspection. Parse failures just return the input; inspection is best effort.
func stripFrontmatter(content string) string {
	_, body, _, err := frontmatter.Split([]byte(content))
	if err != nil {
		return content
	}
	return string(body)
}
