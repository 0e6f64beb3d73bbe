package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
)

// RecordingPublisher is a Publisher that keeps every event it receives
type RecordingPublisher struct {
	mu     sync.Mutex
	events []model.Event

	// Err, when set, is returned from every Publish call
	Err error
}

// Ensure RecordingPublisher implements Publisher
var _ events.Publisher = (*RecordingPublisher)(nil)

// NewRecordingPublisher creates an empty RecordingPublisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the event
func (p *RecordingPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]model.Event, len(p.events))
	copy(result, p.events)
	return result
}

// OfType returns the recorded events with the given type
func (p *RecordingPublisher) OfType(t model.EventType) []model.Event {
	var result []model.Event
	for _, e := range p.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Alerts returns the alert kinds recorded, in order
func (p *RecordingPublisher) Alerts() []model.AlertKind {
	var kinds []model.AlertKind
	for _, e := range p.OfType(model.EventAlert) {
		if payload, ok := e.Payload.(model.AlertPayload); ok {
			kinds = append(kinds, payload.Alert.Kind)
		}
	}
	return kinds
}

// Reset discards all recorded events
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
