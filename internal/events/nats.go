// Package events publishes run results to NATS for downstream consumers
// (site rebuild hooks, notification bots). Publication is optional and never
// fails a pipeline run.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/blogsmith/internal/config"
)

// PostPublished is emitted after a post and its metadata index entry have
// been committed to the content repository.
type PostPublished struct {
	RunID       string    `json:"run_id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	CoverImage  string    `json:"cover_image"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher sends events over a NATS connection.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server. An empty URL is a
// configuration error; callers should skip construction instead.
func NewPublisher(cfg *config.EventsConfig) (*Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("events publisher requires a NATS URL")
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("blogsmith"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", cfg.NATSURL, "subject", cfg.Subject)

	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishPostPublished publishes a post-published event.
func (p *Publisher) PublishPostPublished(event PostPublished) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", "error", err)
	}
}
