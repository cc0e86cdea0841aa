// Package forge talks to the git-hosting API that stores the content
// repository. Only the contents endpoints (get/create/update file) are used;
// publishing never clones the repository locally.
package forge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/config"
)

// ErrNotFound indicates the requested file does not exist in the repository.
// Callers use this to distinguish a benign first-run miss from auth or
// network failures.
var ErrNotFound = errors.New("file not found in repository")

// RepoFile is a file fetched from the repository together with the revision
// marker required to update it in place.
type RepoFile struct {
	Content []byte
	SHA     string
}

// GitHubClient implements the contents API against GitHub.
type GitHubClient struct {
	httpClient *http.Client
	apiURL     string
	token      string
	owner      string
	repo       string
}

// NewGitHubClient creates a new GitHub contents client.
func NewGitHubClient(cfg *config.ForgeConfig) (*GitHubClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("GitHub client requires token authentication")
	}
	owner, repo, ok := strings.Cut(cfg.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/name", cfg.Repository)
	}

	client := &GitHubClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     cfg.APIURL,
		token:      cfg.Token,
		owner:      owner,
		repo:       repo,
	}
	if client.apiURL == "" {
		client.apiURL = "https://api.github.com"
	}

	return client, nil
}

// Repository returns the owner/name the client publishes to.
func (c *GitHubClient) Repository() string {
	return c.owner + "/" + c.repo
}

// githubContent represents a GitHub contents API file response.
type githubContent struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// githubContentPut is the request body for creating or updating a file.
type githubContentPut struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// GetFile fetches a file's content and revision marker. A 404 maps to
// ErrNotFound; every other failure is returned as-is.
func (c *GitHubClient) GetFile(ctx context.Context, filePath string) (*RepoFile, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, filePath)
	req, err := c.newRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	var content githubContent
	if err := c.doRequest(req, &content); err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode content of %s: %w", filePath, err)
	}

	return &RepoFile{Content: decoded, SHA: content.SHA}, nil
}

// CreateFile creates a new file. GitHub rejects the call with 422 when the
// path already exists; that error propagates, no overwrite is attempted.
func (c *GitHubClient) CreateFile(ctx context.Context, filePath, message string, content []byte) error {
	return c.putFile(ctx, filePath, message, content, "")
}

// UpdateFile replaces an existing file identified by the revision marker
// previously read via GetFile.
func (c *GitHubClient) UpdateFile(ctx context.Context, filePath, message string, content []byte, sha string) error {
	return c.putFile(ctx, filePath, message, content, sha)
}

func (c *GitHubClient) putFile(ctx context.Context, filePath, message string, content []byte, sha string) error {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, filePath)
	body := githubContentPut{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
	}

	req, err := c.newRequest(ctx, "PUT", endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(req, nil)
}

func (c *GitHubClient) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, endpoint)

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(string(jsonBody)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		var err error
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "Blogsmith/1.0")

	return req, nil
}

func (c *GitHubClient) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GitHub API error: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
