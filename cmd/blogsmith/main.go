package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogsmith/internal/agent"
	"git.home.luguber.info/inful/blogsmith/internal/blob"
	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/daemon"
	"git.home.luguber.info/inful/blogsmith/internal/events"
	"git.home.luguber.info/inful/blogsmith/internal/forge"
	"git.home.luguber.info/inful/blogsmith/internal/llm"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/runlog"
	"git.home.luguber.info/inful/blogsmith/internal/server"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Start the HTTP server with the optional periodic trigger"`

	Run struct{} `cmd:"" help:"Execute one pipeline run and exit"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "run":
		if err := runOnce(); err != nil {
			slog.Error("Run failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

// buildAgent wires the pipeline from configuration. The returned closers must
// be invoked on shutdown.
func buildAgent(cfg *config.Config, rec metrics.Recorder) (*agent.Agent, *runlog.Store, func(), error) {
	text, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		return nil, nil, nil, err
	}
	blobs, err := blob.NewClient(&cfg.Blob)
	if err != nil {
		return nil, nil, nil, err
	}
	repo, err := forge.NewGitHubClient(&cfg.Forge)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := runlog.NewStore(cfg.Runlog.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open run history: %w", err)
	}

	opts := agent.Options{
		Text:    text,
		Images:  text,
		Blobs:   blobs,
		Repo:    repo,
		Metrics: rec,
		Runs:    store,
	}

	var publisher *events.Publisher
	if cfg.Events.NATSURL != "" {
		publisher, err = events.NewPublisher(&cfg.Events)
		if err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		opts.Events = publisher
	}

	closer := func() {
		publisher.Close()
		if err := store.Close(); err != nil {
			slog.Error("closing run history failed", "error", err)
		}
	}

	return agent.New(cfg, opts), store, closer, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	a, store, closeAgent, err := buildAgent(cfg, recorder)
	if err != nil {
		return err
	}
	defer closeAgent()

	handlers := server.NewHandlers(a, store)
	srv, err := server.New(&cfg.Server, handlers, metrics.HTTPHandler(registry))
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, CLI.Config, a, srv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

func runOnce() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, _, closeAgent, err := buildAgent(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer closeAgent()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := a.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%.2fs)\n", result.Message, result.ExecutionTime)
	return nil
}
