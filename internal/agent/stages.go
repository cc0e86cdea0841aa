package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	derrors "git.home.luguber.info/inful/blogsmith/internal/errors"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
	"git.home.luguber.info/inful/blogsmith/internal/outstatic"
)

const (
	imageSize            = "1024x1024"
	imageDownloadTimeout = 10 * time.Second

	// Returned instead of a real cover image when anything in the image
	// chain fails. The run continues; this is the only non-fatal stage.
	placeholderImageURL = "https://example.com/placeholder.jpg"
)

// selectCategoryAndTitle picks a category at random and asks the model for a
// catchy title.
func (a *Agent) selectCategoryAndTitle(ctx context.Context) (category, title string, err error) {
	categories := a.cfg.Agent.Categories
	category = categories[a.pick(len(categories))]

	title, err = a.text.Complete(ctx, titlePrompt(category), titleMaxTokens, a.cfg.LLM.Temperature)
	if err != nil {
		return category, "", derrors.Wrap(err, derrors.CategoryLLM, "title generation failed")
	}
	return category, title, nil
}

// researchTopic summarizes the topic into bullet points. Input constraints
// are checked before any network call is made.
func (a *Agent) researchTopic(ctx context.Context, topic, year string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", derrors.ValidationError("topic cannot be empty")
	}
	if !isAllDigits(year) {
		return "", derrors.ValidationError("current year must be a number")
	}

	research, err := a.text.Complete(ctx, researchPrompt(topic, year), researchMaxTokens, a.cfg.LLM.Temperature)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryLLM, "research failed")
	}
	return research, nil
}

// buildImagePrompt turns the title and research into a short image prompt.
func (a *Agent) buildImagePrompt(ctx context.Context, topic, title, research string) (string, error) {
	prompt, err := a.text.Complete(ctx, imagePromptPrompt(topic, title, research), imagePromptMaxTokens, a.cfg.LLM.Temperature)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryLLM, "image prompt generation failed")
	}
	return prompt, nil
}

// produceImage generates a cover image, downloads it, and re-uploads it to the
// public blob store. Any failure along the chain falls back to the placeholder
// URL instead of aborting the run; fellBack reports which path was taken.
func (a *Agent) produceImage(ctx context.Context, runID, imagePrompt, title string) (url string, fellBack bool) {
	blobURL, err := a.generateAndUploadImage(ctx, imagePrompt, title)
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelWarn, "image production failed, using placeholder",
			logfields.RunID(runID), logfields.Error(err))
		return placeholderImageURL, true
	}
	return blobURL, false
}

func (a *Agent) generateAndUploadImage(ctx context.Context, imagePrompt, title string) (string, error) {
	imageURL, err := a.images.GenerateImage(ctx, imagePrompt, imageSize)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryLLM, "image generation failed")
	}

	data, err := a.downloadImage(ctx, imageURL)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryNetwork, "image download failed")
	}

	key := outstatic.StorageKey(title, a.now())
	blobURL, err := a.blobs.Put(ctx, key, data, "image/png")
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryBlob, "image upload failed")
	}
	return blobURL, nil
}

func (a *Agent) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.download.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image host returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// writePost drafts the Markdown post with its frontmatter block.
func (a *Agent) writePost(ctx context.Context, topic, research, coverImage, publishedAt string) (string, error) {
	prompt := postPrompt(topic, research, a.cfg.Author.Name, a.cfg.Author.Picture, coverImage, publishedAt)
	post, err := a.text.Complete(ctx, prompt, postMaxTokens, a.cfg.LLM.Temperature)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryLLM, "blog post generation failed")
	}
	return post, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
