package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
	logger  *slog.Logger
}

var _ EventHandler = (*RedisPublisher)(nil)

// NewRedisPublisher creates a publisher for channel. It panics if client is
// nil or channel is empty.
func NewRedisPublisher(client redis.Cmdable, channel string, logger *slog.Logger) *RedisPublisher {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if channel == "" {
		panic("redis channel cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger.With(slog.String("component", "redis_event_publisher")),
	}
}

// HandleEvent publishes event. Having no subscribers is not an error.
func (p *RedisPublisher) HandleEvent(ctx context.Context, event *Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, b).Result()
	if err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}

	p.logger.Debug("published event",
		slog.String("event_type", event.Type),
		slog.String("channel", p.channel),
		slog.Int64("receivers", receivers))
	return nil
}
