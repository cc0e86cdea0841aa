package agent

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/forge"
	"git.home.luguber.info/inful/blogsmith/internal/outstatic"
)

func writeReportFile(t *testing.T, a *Agent, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(a.cfg.Agent.ReportPath, []byte(content), 0o644))
}

func TestPublish_MissingReportFileFails(t *testing.T) {
	repo := &fakeRepo{}
	a := New(testConfig(t), Options{Text: &fakeText{}, Repo: repo})

	_, _, _, err := a.publish(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "report file missing")
	require.Empty(t, repo.created)
}

func TestPublish_NoFrontmatterPublishesDefaults(t *testing.T) {
	repo := &fakeRepo{}
	a := New(testConfig(t), Options{Text: &fakeText{}, Repo: repo})
	writeReportFile(t, a, "Just a body with no metadata block.")

	msg, post, postPath, err := a.publish(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Successfully pushed blog post", msg)
	require.Equal(t, "default-slug", post.Slug)
	require.Equal(t, "outstatic/content/blogs/default-slug.md", postPath)

	require.Len(t, repo.created, 2)
	require.Equal(t, "Add default-slug.md", repo.created[0].message)

	var idx outstatic.Index
	require.NoError(t, json.Unmarshal(repo.created[1].content, &idx))
	require.Len(t, idx.Metadata, 1)
	require.Equal(t, "Untitled", idx.Metadata[0].Title)
	require.Equal(t, "draft", idx.Metadata[0].Status)
	require.Equal(t, "Uncategorized", idx.Metadata[0].Category)
	require.Equal(t, postPath, idx.Metadata[0].Outstatic.Path)
}

func TestPublish_AppendsToExistingIndex(t *testing.T) {
	existing := outstatic.NewIndex()
	existing.Append(outstatic.IndexEntry{Slug: "older-post", Title: "Older"})
	existingJSON, err := existing.Marshal()
	require.NoError(t, err)

	repo := &fakeRepo{files: map[string]*forge.RepoFile{
		"outstatic/content/metadata.json": {Content: existingJSON, SHA: "abc123"},
	}}
	a := New(testConfig(t), Options{Text: &fakeText{}, Repo: repo})
	writeReportFile(t, a, samplePost)

	_, post, _, err := a.publish(context.Background())
	require.NoError(t, err)
	require.Equal(t, "go-rising", post.Slug)

	// Post created, index updated in place with the previously read SHA.
	require.Len(t, repo.created, 1)
	require.Len(t, repo.updated, 1)
	require.Equal(t, "Update metadata", repo.updated[0].message)
	require.Equal(t, "abc123", repo.updated[0].sha)

	var idx outstatic.Index
	require.NoError(t, json.Unmarshal(repo.updated[0].content, &idx))
	require.Len(t, idx.Metadata, 2)
	require.Equal(t, "older-post", idx.Metadata[0].Slug)
	require.Equal(t, "go-rising", idx.Metadata[1].Slug)
}

func TestPublish_DuplicateSlugAppendsAgain(t *testing.T) {
	existing := outstatic.NewIndex()
	existing.Append(outstatic.IndexEntry{Slug: "go-rising", Title: "Go Rising"})
	existingJSON, err := existing.Marshal()
	require.NoError(t, err)

	repo := &fakeRepo{files: map[string]*forge.RepoFile{
		"outstatic/content/metadata.json": {Content: existingJSON, SHA: "abc123"},
	}}
	a := New(testConfig(t), Options{Text: &fakeText{}, Repo: repo})
	writeReportFile(t, a, samplePost)

	_, _, _, err = a.publish(context.Background())
	require.NoError(t, err)

	// Append-only: no dedup against an existing slug.
	var idx outstatic.Index
	require.NoError(t, json.Unmarshal(repo.updated[0].content, &idx))
	require.Len(t, idx.Metadata, 2)
}

func TestPublish_UnclosedFrontmatterFails(t *testing.T) {
	repo := &fakeRepo{}
	a := New(testConfig(t), Options{Text: &fakeText{}, Repo: repo})
	writeReportFile(t, a, "---\ntitle: 'Broken'\nno closing delimiter here")

	_, _, _, err := a.publish(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed frontmatter")
	require.Empty(t, repo.created)
}

func TestPublish_PostCreateFailurePropagates(t *testing.T) {
	repo := &fakeRepo{createErr: errForTest("422 Unprocessable Entity")}
	a := New(testConfig(t), Options{Text: &fakeText{}, Repo: repo})
	writeReportFile(t, a, samplePost)

	_, _, _, err := a.publish(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "push failed")
}

type errForTest string

func (e errForTest) Error() string { return string(e) }
