// Package config loads and validates the blogsmith configuration from an
// optional YAML file plus environment variables. Secrets are only ever read
// from the environment (optionally seeded from a .env file).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/blogsmith/internal/errors"
)

// Environment variable names for the required secrets. These match the
// deployment environment of the content repository pipeline.
const (
	EnvLLMAPIKey  = "OPENAI_API_KEY"
	EnvForgeToken = "GIT_TOKEN"
	EnvBlobToken  = "BLOB_READ_WRITE_TOKEN"
)

// DefaultCategories is the fixed list a run's category is drawn from.
var DefaultCategories = []string{
	"AI", "Web3", "Blockchain Fusion", "Startups", "Tech Culture",
	"Tools & Reviews", "How-Tos", "Editorials", "AGI",
}

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	Blob   BlobConfig   `yaml:"blob"`
	Forge  ForgeConfig  `yaml:"forge"`
	Author AuthorConfig `yaml:"author"`
	Agent  AgentConfig  `yaml:"agent"`
	Daemon DaemonConfig `yaml:"daemon"`
	Runlog RunlogConfig `yaml:"runlog"`
	Events EventsConfig `yaml:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig holds text/image model settings. APIKey comes from the environment.
type LLMConfig struct {
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	ImageModel  string  `yaml:"image_model"`
	Temperature float64 `yaml:"temperature"`
}

// BlobConfig holds object-storage settings. Token comes from the environment.
type BlobConfig struct {
	Token   string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
}

// ForgeConfig holds the content repository settings. Token comes from the environment.
type ForgeConfig struct {
	Token        string `yaml:"-"`
	APIURL       string `yaml:"api_url"`
	Repository   string `yaml:"repository"` // owner/name
	ContentDir   string `yaml:"content_dir"`
	MetadataPath string `yaml:"metadata_path"`
}

// AuthorConfig holds the byline embedded into generated posts.
type AuthorConfig struct {
	Name    string `yaml:"name"`
	Picture string `yaml:"picture"`
}

// AgentConfig holds pipeline settings.
type AgentConfig struct {
	Categories []string `yaml:"categories"`
	ReportPath string   `yaml:"report_path"`
}

// DaemonConfig holds serve-mode settings. A zero schedule disables the
// periodic trigger; the pipeline then only runs on explicit HTTP triggers.
type DaemonConfig struct {
	Schedule Duration `yaml:"schedule"`
}

// Duration wraps time.Duration so YAML values like "6h" or "30m" decode cleanly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RunlogConfig holds the run-history store settings.
type RunlogConfig struct {
	Path string `yaml:"path"`
}

// EventsConfig holds optional NATS publication settings. Empty URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Load reads configuration from the given YAML file (if it exists), seeds the
// process environment from .env, and overlays the secrets from the environment.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, derrors.Wrap(err, derrors.CategoryConfig, fmt.Sprintf("parse config file %s", path))
		}
	} else if !os.IsNotExist(err) {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, fmt.Sprintf("read config file %s", path))
	}

	cfg.LLM.APIKey = os.Getenv(EnvLLMAPIKey)
	cfg.Forge.Token = os.Getenv(EnvForgeToken)
	cfg.Blob.Token = os.Getenv(EnvBlobToken)

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.ImageModel == "" {
		c.LLM.ImageModel = "dall-e-3"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.Blob.BaseURL == "" {
		c.Blob.BaseURL = "https://blob.vercel-storage.com"
	}
	if c.Forge.APIURL == "" {
		c.Forge.APIURL = "https://api.github.com"
	}
	if c.Forge.ContentDir == "" {
		c.Forge.ContentDir = "outstatic/content/blogs"
	}
	if c.Forge.MetadataPath == "" {
		c.Forge.MetadataPath = "outstatic/content/metadata.json"
	}
	if c.Author.Name == "" {
		c.Author.Name = "Blogsmith"
	}
	if c.Author.Picture == "" {
		c.Author.Picture = "https://example.com/avatar.png"
	}
	if len(c.Agent.Categories) == 0 {
		c.Agent.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.Agent.ReportPath == "" {
		c.Agent.ReportPath = filepath.Join(os.TempDir(), "report.md")
	}
	if c.Runlog.Path == "" {
		c.Runlog.Path = "data/runs.db"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "blogsmith.post.published"
	}
}

// Validate fails fast when a required secret or setting is absent.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return derrors.ConfigError(EnvLLMAPIKey + " not set")
	}
	if c.Forge.Token == "" {
		return derrors.ConfigError(EnvForgeToken + " not set")
	}
	if c.Blob.Token == "" {
		return derrors.ConfigError(EnvBlobToken + " not set")
	}
	if c.Forge.Repository == "" {
		return derrors.ConfigError("forge.repository not set")
	}
	return nil
}
