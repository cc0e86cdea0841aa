package main

import (
	"fmt"
	"log/slog"
	"os"
)

const configTemplate = `# blogsmith configuration
#
# Secrets are read from the environment (or a .env file), never from here:
#   OPENAI_API_KEY         text and image generation
#   GIT_TOKEN              content repository commits
#   BLOB_READ_WRITE_TOKEN  cover image uploads

server:
  addr: ":8000"

llm:
  model: gpt-4o-mini
  image_model: dall-e-3
  temperature: 0.7

forge:
  repository: owner/name
  content_dir: outstatic/content/blogs
  metadata_path: outstatic/content/metadata.json

author:
  name: Blogsmith
  picture: https://example.com/avatar.png

daemon:
  # Uncomment to run the pipeline periodically in serve mode.
  # schedule: 24h

runlog:
  path: data/runs.db

events:
  # Uncomment to publish post.published events.
  # nats_url: nats://localhost:4222
  subject: blogsmith.post.published
`

// runInit writes a starter configuration file.
func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	slog.Info("Configuration file created", "path", path)
	return nil
}
