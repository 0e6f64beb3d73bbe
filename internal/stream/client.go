package stream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a WebSocket peer
	pongWait = 60 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Transports a client can be served over
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Client is one connected stream subscriber
type Client struct {
	id          string
	transport   string
	hub         *Hub
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a new stream client
func NewClient(hub *Hub, transport string) *Client {
	return &Client{
		id:          uuid.NewString(),
		transport:   transport,
		hub:         hub,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the client's identifier
func (c *Client) ID() string {
	return c.id
}

// Close removes the client from its hub
// It is safe to call more than once.
func (c *Client) Close() {
	c.hub.Unregister(c)
}
