package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.LLMConfig{
		APIKey:     "sk-test",
		BaseURL:    srv.URL,
		Model:      "gpt-4o-mini",
		ImageModel: "dall-e-3",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.LLMConfig{})
	require.Error(t, err)
}

func TestComplete_ReturnsTrimmedContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-4o-mini", req.Model)
		require.Equal(t, 300, req.MaxTokens)
		require.InDelta(t, 0.7, req.Temperature, 0.0001)
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  - bullet one\n"}},
			},
		})
	})

	out, err := client.Complete(context.Background(), "summarize", 300, 0.7)
	require.NoError(t, err)
	require.Equal(t, "- bullet one", out)
}

func TestComplete_EmptyContentIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "   "}},
			},
		})
	})

	_, err := client.Complete(context.Background(), "summarize", 50, 0.7)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestComplete_APIErrorIncludesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "summarize", 50, 0.7)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestGenerateImage_ReturnsURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images/generations", r.URL.Path)

		var req imageGenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "dall-e-3", req.Model)
		require.Equal(t, "1024x1024", req.Size)
		require.Equal(t, "standard", req.Quality)
		require.Equal(t, 1, req.N)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": "https://images.example.com/abc.png"}},
		})
	})

	url, err := client.GenerateImage(context.Background(), "a futuristic skyline", "1024x1024")
	require.NoError(t, err)
	require.Equal(t, "https://images.example.com/abc.png", url)
}

func TestGenerateImage_MissingURLIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	})

	_, err := client.GenerateImage(context.Background(), "prompt", "1024x1024")
	require.Error(t, err)
}
