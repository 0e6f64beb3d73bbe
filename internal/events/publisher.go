package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/turntimer/internal/model"
)

// Publisher delivers session events to an observer
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// New builds an event with a fresh ID
func New(code model.SessionCode, eventType model.EventType, at time.Time, payload any) model.Event {
	return model.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		Timestamp:   at,
		SessionCode: code,
		Payload:     payload,
	}
}

// Multi fans an event out to every publisher, in order
// A failing publisher does not stop delivery to the rest
type Multi []Publisher

// Publish delivers the event to all publishers and joins their errors
func (m Multi) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, model.Event) error { return nil }
