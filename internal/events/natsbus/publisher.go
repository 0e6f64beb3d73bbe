package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
)

// Conn is the subset of *nats.Conn used for publishing
type Conn interface {
	PublishMsg(msg *nats.Msg) error
}

// Config holds NATS connection settings
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns sensible defaults for NATS configuration
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "turntimer.session",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher sends session events to core NATS subjects
// Subjects are <prefix>.<session code>.<event type>
type Publisher struct {
	conn   Conn
	nc     *nats.Conn
	prefix string
}

// Ensure Publisher implements events.Publisher
var _ events.Publisher = (*Publisher)(nil)

// Connect dials NATS and returns a Publisher that owns the connection
func Connect(cfg Config, logger *slog.Logger) (*Publisher, error) {
	logger = logger.With(slog.String("component", "natsbus"))

	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Error("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	p := New(nc, cfg.SubjectPrefix)
	p.nc = nc
	return p, nil
}

// New creates a Publisher on an existing connection
func New(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultConfig().SubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event is published on
func (p *Publisher) Subject(code model.SessionCode, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, code, eventType)
}

// Publish sends the event as JSON with identifying headers
func (p *Publisher) Publish(_ context.Context, event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.Subject(event.SessionCode, event.Type),
		Data:    data,
		Header: nats.Header{
			"Event-Type":   []string{string(event.Type)},
			"Event-ID":     []string{event.ID},
			"Session-Code": []string{string(event.SessionCode)},
		},
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	return nil
}

// Close drains and closes the connection if this Publisher opened it
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
