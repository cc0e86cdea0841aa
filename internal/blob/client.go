// Package blob uploads files to a Vercel Blob compatible object store.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/config"
)

// Client performs authenticated put operations against the blob store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new blob client from configuration.
func NewClient(cfg *config.BlobConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("blob client requires a read-write token")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
	}
	if client.baseURL == "" {
		client.baseURL = "https://blob.vercel-storage.com"
	}

	return client, nil
}

type putResponse struct {
	URL string `json:"url"`
}

// Put uploads data under the given pathname with a public-read access policy
// and returns the public URL of the stored object.
func (c *Client) Put(ctx context.Context, pathname string, data []byte, contentType string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, pathname)

	req, err := http.NewRequestWithContext(ctx, "PUT", u.String(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-api-version", "7")
	req.Header.Set("x-content-type", contentType)
	req.Header.Set("x-add-random-suffix", "0")
	req.Header.Set("access", "public")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("blob API error: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var pr putResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("decode blob response: %w", err)
	}
	if pr.URL == "" {
		return "", fmt.Errorf("blob response contained no URL")
	}
	return pr.URL, nil
}
