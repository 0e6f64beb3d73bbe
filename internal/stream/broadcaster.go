package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
)

// Broadcaster publishes session events to the session's stream hub
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// Ensure Broadcaster implements events.Publisher
var _ events.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "stream-broadcaster")),
	}
}

// Publish sends the event as JSON to every client watching the session
// Sessions without watchers are skipped. An ended session's hub is closed
// after its final event is queued.
func (b *Broadcaster) Publish(_ context.Context, event model.Event) error {
	hub := b.hubManager.GetHub(event.SessionCode)
	if hub == nil {
		return nil
	}

	message, err := EventMessage(event)
	if err != nil {
		return err
	}
	hub.Broadcast(message)

	if event.Type == model.EventSessionEnded {
		b.hubManager.RemoveHub(event.SessionCode)
	}
	return nil
}

// EventMessage encodes an event as a stream message named after its type
func EventMessage(event model.Event) (Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return Message{Event: string(event.Type), Data: data}, nil
}
