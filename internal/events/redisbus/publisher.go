package redisbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
)

// Channel prefix shared with the snapshot store's key prefix
const channelPrefix = "turntimer"

// Channel returns the pub/sub channel carrying a session's events
func Channel(code model.SessionCode) string {
	return fmt.Sprintf("%s:session:%s:events", channelPrefix, code)
}

// Publisher sends session events to Redis pub/sub as JSON
// Delivery is fire-and-forget: events are not retained for late subscribers
type Publisher struct {
	client *redis.Client
}

// Ensure Publisher implements events.Publisher
var _ events.Publisher = (*Publisher)(nil)

// New creates a Publisher on an existing client
func New(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends the event to the session's channel
func (p *Publisher) Publish(ctx context.Context, event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(event.SessionCode), data).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}
