// Package agent runs the blog generation pipeline: pick a topic, research it,
// produce a cover image, write the post, and publish it to the content
// repository. Stages execute strictly in sequence; a single failure aborts the
// run, except image production which degrades to a placeholder.
package agent

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	derrors "git.home.luguber.info/inful/blogsmith/internal/errors"
	"git.home.luguber.info/inful/blogsmith/internal/events"
	"git.home.luguber.info/inful/blogsmith/internal/forge"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
	"git.home.luguber.info/inful/blogsmith/internal/markdown"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/runlog"
)

// Stage names used in logs and metrics.
const (
	stageSelectTopic  = "select_topic"
	stageResearch     = "research"
	stageImagePrompt  = "image_prompt"
	stageProduceImage = "produce_image"
	stageWritePost    = "write_post"
	stagePublish      = "publish"
)

// TextGenerator produces text completions.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// ImageGenerator produces images and returns the provider-hosted URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
}

// BlobUploader stores bytes in the public object store.
type BlobUploader interface {
	Put(ctx context.Context, pathname string, data []byte, contentType string) (string, error)
}

// ContentRepo is the subset of the forge client the publisher needs.
type ContentRepo interface {
	GetFile(ctx context.Context, path string) (*forge.RepoFile, error)
	CreateFile(ctx context.Context, path, message string, content []byte) error
	UpdateFile(ctx context.Context, path, message string, content []byte, sha string) error
}

// RunRecorder persists run outcomes. Optional.
type RunRecorder interface {
	Append(ctx context.Context, rec runlog.Record) error
}

// EventPublisher emits post-published events. Optional.
type EventPublisher interface {
	PublishPostPublished(event events.PostPublished) error
}

// Options carries the agent's collaborators. Text, Images, Blobs, and Repo
// are required; everything else has a sensible default or is optional.
type Options struct {
	Text   TextGenerator
	Images ImageGenerator
	Blobs  BlobUploader
	Repo   ContentRepo

	Metrics  metrics.Recorder
	Runs     RunRecorder
	Events   EventPublisher
	Download *http.Client

	Now  func() time.Time
	Pick func(n int) int
}

// Agent orchestrates one pipeline run at a time.
type Agent struct {
	cfg      *config.Config
	text     TextGenerator
	images   ImageGenerator
	blobs    BlobUploader
	repo     ContentRepo
	metrics  metrics.Recorder
	runs     RunRecorder
	events   EventPublisher
	download *http.Client
	now      func() time.Time
	pick     func(n int) int
}

// New creates an agent from configuration and collaborators.
func New(cfg *config.Config, opts Options) *Agent {
	a := &Agent{
		cfg:      cfg,
		text:     opts.Text,
		images:   opts.Images,
		blobs:    opts.Blobs,
		repo:     opts.Repo,
		metrics:  opts.Metrics,
		runs:     opts.Runs,
		events:   opts.Events,
		download: opts.Download,
		now:      opts.Now,
		pick:     opts.Pick,
	}
	if a.metrics == nil {
		a.metrics = metrics.NoopRecorder{}
	}
	if a.download == nil {
		a.download = &http.Client{Timeout: imageDownloadTimeout}
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.pick == nil {
		a.pick = rand.IntN
	}
	return a
}

// RunResult is the payload returned for a successful run.
type RunResult struct {
	Message       string  `json:"result"`
	ExecutionTime float64 `json:"execution_time"`
}

// Run executes the full pipeline once.
func (a *Agent) Run(ctx context.Context) (*RunResult, error) {
	start := a.now()
	runID := uuid.NewString()

	slog.LogAttrs(ctx, slog.LevelInfo, "pipeline run starting", logfields.RunID(runID))

	stageStart := a.now()
	category, title, err := a.selectCategoryAndTitle(ctx)
	a.observeStage(ctx, runID, stageSelectTopic, stageStart, err)
	if err != nil {
		return nil, a.fail(ctx, runID, start, category, title, "", err)
	}
	slog.LogAttrs(ctx, slog.LevelInfo, "topic selected",
		logfields.RunID(runID), logfields.Category(category), logfields.Title(title))

	// The generated title doubles as the research topic downstream.
	topic := title
	year := a.now().Format("2006")
	publishedAt := a.now().Format("2006-01-02T15:04:05.000000") + "Z"

	stageStart = a.now()
	research, err := a.researchTopic(ctx, topic, year)
	a.observeStage(ctx, runID, stageResearch, stageStart, err)
	if err != nil {
		return nil, a.fail(ctx, runID, start, category, title, "", err)
	}

	stageStart = a.now()
	imagePrompt, err := a.buildImagePrompt(ctx, topic, title, research)
	a.observeStage(ctx, runID, stageImagePrompt, stageStart, err)
	if err != nil {
		return nil, a.fail(ctx, runID, start, category, title, "", err)
	}

	stageStart = a.now()
	coverImage, fellBack := a.produceImage(ctx, runID, imagePrompt, title)
	a.observeImageStage(ctx, runID, stageStart, fellBack)

	stageStart = a.now()
	postDoc, err := a.writePost(ctx, topic, research, coverImage, publishedAt)
	a.observeStage(ctx, runID, stageWritePost, stageStart, err)
	if err != nil {
		return nil, a.fail(ctx, runID, start, category, title, "", err)
	}

	if err := a.writeReport(postDoc); err != nil {
		return nil, a.fail(ctx, runID, start, category, title, "", err)
	}

	stageStart = a.now()
	message, post, postPath, err := a.publish(ctx)
	a.observeStage(ctx, runID, stagePublish, stageStart, err)
	if err != nil {
		return nil, a.fail(ctx, runID, start, category, title, "", err)
	}

	a.inspectBody(ctx, runID, postDoc)

	elapsed := a.now().Sub(start)
	a.metrics.ObserveRunDuration(elapsed)
	a.metrics.IncRunOutcome("success")

	a.record(ctx, runlog.Record{
		ID:         runID,
		StartedAt:  start,
		DurationMS: elapsed.Milliseconds(),
		Category:   category,
		Title:      post.Title,
		Slug:       post.Slug,
		Status:     "success",
	})

	if a.events != nil {
		event := events.PostPublished{
			RunID:       runID,
			Category:    post.Category,
			Title:       post.Title,
			Slug:        post.Slug,
			Path:        postPath,
			CoverImage:  post.CoverImage,
			PublishedAt: a.now().UTC(),
		}
		if err := a.events.PublishPostPublished(event); err != nil {
			slog.LogAttrs(ctx, slog.LevelWarn, "event publication failed",
				logfields.RunID(runID), logfields.Error(err))
		}
	}

	slog.LogAttrs(ctx, slog.LevelInfo, "pipeline run complete",
		logfields.RunID(runID), logfields.Slug(post.Slug), logfields.Path(postPath),
		logfields.DurationMS(durationMS(elapsed)))

	return &RunResult{Message: message, ExecutionTime: elapsed.Seconds()}, nil
}

func (a *Agent) observeStage(ctx context.Context, runID, stage string, start time.Time, err error) {
	elapsed := a.now().Sub(start)
	a.metrics.ObserveStageDuration(stage, elapsed)
	if err != nil {
		a.metrics.IncStageResult(stage, metrics.ResultError)
		slog.LogAttrs(ctx, slog.LevelError, "stage failed",
			logfields.RunID(runID), logfields.Stage(stage),
			logfields.DurationMS(durationMS(elapsed)), logfields.Error(err))
		return
	}
	a.metrics.IncStageResult(stage, metrics.ResultSuccess)
	slog.LogAttrs(ctx, slog.LevelInfo, "stage complete",
		logfields.RunID(runID), logfields.Stage(stage),
		logfields.DurationMS(durationMS(elapsed)))
}

func (a *Agent) observeImageStage(ctx context.Context, runID string, start time.Time, fellBack bool) {
	elapsed := a.now().Sub(start)
	a.metrics.ObserveStageDuration(stageProduceImage, elapsed)
	if fellBack {
		a.metrics.IncStageResult(stageProduceImage, metrics.ResultFallback)
	} else {
		a.metrics.IncStageResult(stageProduceImage, metrics.ResultSuccess)
	}
	slog.LogAttrs(ctx, slog.LevelInfo, "stage complete",
		logfields.RunID(runID), logfields.Stage(stageProduceImage),
		logfields.DurationMS(durationMS(elapsed)))
}

// inspectBody warns about body budget overruns; the run still succeeds.
func (a *Agent) inspectBody(ctx context.Context, runID, content string) {
	stats := markdown.InspectBody([]byte(stripFrontmatter(content)))
	if stats.Words > 200 || stats.CodeBlocks > 0 {
		slog.LogAttrs(ctx, slog.LevelWarn, "post body exceeds requested budget",
			logfields.RunID(runID),
			slog.Int("words", stats.Words),
			slog.Int("paragraphs", stats.Paragraphs),
			slog.Int("code_blocks", stats.CodeBlocks))
	}
}

func (a *Agent) fail(ctx context.Context, runID string, start time.Time, category, title, slug string, err error) error {
	elapsed := a.now().Sub(start)
	a.metrics.ObserveRunDuration(elapsed)
	a.metrics.IncRunOutcome("failed")

	a.record(ctx, runlog.Record{
		ID:         runID,
		StartedAt:  start,
		DurationMS: elapsed.Milliseconds(),
		Category:   category,
		Title:      title,
		Slug:       slug,
		Status:     "failed",
		Error:      err.Error(),
	})

	slog.LogAttrs(ctx, slog.LevelError, "pipeline run failed",
		logfields.RunID(runID), logfields.DurationMS(durationMS(elapsed)), logfields.Error(err))
	return err
}

func (a *Agent) record(ctx context.Context, rec runlog.Record) {
	if a.runs == nil {
		return
	}
	if err := a.runs.Append(ctx, rec); err != nil {
		slog.LogAttrs(ctx, slog.LevelWarn, "run history write failed",
			logfields.RunID(rec.ID), logfields.Error(err))
	}
}

// writeReport overwrites the report file each run; it is never cleaned up.
func (a *Agent) writeReport(content string) error {
	if err := os.WriteFile(a.cfg.Agent.ReportPath, []byte(content), 0o644); err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, "write report file")
	}
	return nil
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
