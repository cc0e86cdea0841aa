// Package llm provides a client for the OpenAI-compatible text-completion and
// image-generation endpoints.
package llm

import (
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

// Client calls the chat-completion and image-generation APIs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	imageModel string
}

// NewClient creates a new LLM client from configuration.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM client requires an API key")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
	if client.baseURL == "" {
		client.baseURL = "https://api.openai.com"
	}

	return client, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-message chat completion and returns the trimmed
// response text. An empty response is an error; no stage may propagate empty
// content downstream.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	req, err := c.newRequest(ctx, "/v1/chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := c.doRequest(req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("completion response was empty")
	}
	return content, nil
}

type imageGenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage requests a single standard-quality image and returns the URL
// the provider hosts it at.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	reqBody := imageGenerationRequest{
		Model:   c.imageModel,
		Prompt:  prompt,
		Size:    size,
		Quality: "standard",
		N:       1,
	}

	req, err := c.newRequest(ctx, "/v1/images/generations", reqBody)
	if err != nil {
		return "", err
	}

	var resp imageGenerationResponse
	if err := c.doRequest(req, &resp); err != nil {
		return "", err
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image generation response contained no image URL")
	}
	return resp.Data[0].URL, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, endpoint)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "Blogsmith/1.0")

	return req, nil
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("LLM API error: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
