package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexus-hq/nexus/run"
)

// DefaultChannel is the pub/sub channel the PDF renderer subscribes to.
const DefaultChannel = "nexus.reports"

// PublisherOptions configures the Redis connection for report hand-off.
type PublisherOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// Channel is the pub/sub channel name. Defaults to DefaultChannel.
	Channel string

	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration

	// Logger receives publish diagnostics.
	Logger *slog.Logger
}

// Publisher hands sealed run summaries to the external PDF renderer over a
// Redis pub/sub channel. Nothing is stored: a summary with no subscriber is
// simply gone, and the run itself is unaffected either way.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewPublisher connects to Redis and verifies connectivity with a ping.
func NewPublisher(opts PublisherOptions) (*Publisher, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Channel == "" {
		opts.Channel = DefaultChannel
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Publisher{client: client, channel: opts.Channel, logger: logger}, nil
}

// Publish serializes the summary and sends it on the channel.
func (p *Publisher) Publish(ctx context.Context, summary *run.Summary) error {
	data, err := Marshal(summary)
	if err != nil {
		return fmt.Errorf("serialize summary: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}

	p.logger.Info("summary published", "run_id", summary.RunID, "channel", p.channel, "bytes", len(data))
	return nil
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
