package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Incoming frames are only read to observe pongs and close frames
const maxMessageSize = 512

// NewUpgrader creates a WebSocket upgrader accepting the given origins
// An empty list accepts any origin
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
		},
	}
}

// ServeWS upgrades the request and streams a registered client's messages as text frames
// Each frame carries the message data; initial messages are written first
func ServeWS(w http.ResponseWriter, r *http.Request, client *Client, upgrader *websocket.Upgrader, logger *slog.Logger, initial ...Message) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.Warn("websocket upgrade failed",
			slog.String("client_id", client.id),
			slog.Any("error", err))
		client.Close()
		return
	}

	go client.readPump(conn)
	client.writePump(conn, initial)
}

// readPump consumes incoming frames until the peer goes away
func (c *Client) readPump(conn *websocket.Conn) {
	defer c.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards hub messages to the connection and keeps it alive
func (c *Client) writePump(conn *websocket.Conn, initial []Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for _, message := range initial {
		if err := c.write(conn, websocket.TextMessage, message.Data); err != nil {
			return
		}
	}

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				_ = c.write(conn, websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(conn, websocket.TextMessage, message.Data); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}
