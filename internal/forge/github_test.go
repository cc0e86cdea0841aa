package forge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GitHubClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGitHubClient(&config.ForgeConfig{
		Token:      "ghp-test",
		APIURL:     srv.URL,
		Repository: "acme/blog",
	})
	require.NoError(t, err)
	return client
}

func TestNewGitHubClient_Validation(t *testing.T) {
	_, err := NewGitHubClient(&config.ForgeConfig{Repository: "acme/blog"})
	require.Error(t, err)

	_, err = NewGitHubClient(&config.ForgeConfig{Token: "t", Repository: "no-slash"})
	require.Error(t, err)

	client, err := NewGitHubClient(&config.ForgeConfig{Token: "t", Repository: "acme/blog"})
	require.NoError(t, err)
	require.Equal(t, "acme/blog", client.Repository())
}

func TestGetFile_DecodesBase64Content(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/repos/acme/blog/contents/outstatic/content/metadata.json", r.URL.Path)
		require.Equal(t, "Bearer ghp-test", r.Header.Get("Authorization"))
		require.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		// GitHub wraps base64 content with newlines.
		encoded := base64.StdEncoding.EncodeToString([]byte(`{"metadata": []}`))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"content":  encoded[:10] + "\n" + encoded[10:],
			"encoding": "base64",
			"sha":      "abc123",
		})
	})

	file, err := client.GetFile(context.Background(), "outstatic/content/metadata.json")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"metadata": []}`), file.Content)
	require.Equal(t, "abc123", file.SHA)
}

func TestGetFile_404MapsToErrNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	_, err := client.GetFile(context.Background(), "outstatic/content/metadata.json")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestGetFile_OtherErrorsAreNotErrNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Bad credentials"}`, http.StatusUnauthorized)
	})

	_, err := client.GetFile(context.Background(), "outstatic/content/metadata.json")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), "401")
}

func TestCreateFile_SendsBase64WithoutSHA(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/repos/acme/blog/contents/outstatic/content/blogs/my-post.md", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Add my-post.md", body["message"])
		_, hasSHA := body["sha"]
		require.False(t, hasSHA)

		decoded, err := base64.StdEncoding.DecodeString(body["content"])
		require.NoError(t, err)
		require.Equal(t, []byte("# hello"), decoded)

		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateFile(context.Background(), "outstatic/content/blogs/my-post.md", "Add my-post.md", []byte("# hello"))
	require.NoError(t, err)
}

func TestCreateFile_ExistingPathPropagatesError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Invalid request. \"sha\" wasn't supplied."}`, http.StatusUnprocessableEntity)
	})

	err := client.CreateFile(context.Background(), "outstatic/content/blogs/my-post.md", "Add my-post.md", []byte("x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "422")
}

func TestUpdateFile_SendsRevisionMarker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "abc123", body["sha"])
		require.Equal(t, "Update metadata", body["message"])
		w.WriteHeader(http.StatusOK)
	})

	err := client.UpdateFile(context.Background(), "outstatic/content/metadata.json", "Update metadata", []byte("{}"), "abc123")
	require.NoError(t, err)
}
