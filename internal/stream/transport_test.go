package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/turntimer/internal/testutil"
)

type TransportSuite struct {
	suite.Suite
	hub    *Hub
	server *httptest.Server

	// afterRegister runs between registration and the initial write
	afterRegister func()
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	s.hub = NewHub("ABC234", testutil.NopLogger())
	s.afterRegister = nil
	go s.hub.Run()

	upgrader := NewUpgrader(nil)
	snapshot := Message{Event: "snapshot", Data: []byte(`{"remaining":60}`)}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.subscribe(TransportSSE)
		if !ok {
			http.Error(w, "Session has ended", http.StatusGone)
			return
		}
		ServeSSE(w, r, client, snapshot)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.subscribe(TransportWebSocket)
		if !ok {
			http.Error(w, "Session has ended", http.StatusGone)
			return
		}
		ServeWS(w, r, client, upgrader, testutil.NopLogger(), snapshot)
	})
	s.server = httptest.NewServer(mux)
}

func (s *TransportSuite) subscribe(transport string) (*Client, bool) {
	client := NewClient(s.hub, transport)
	if !s.hub.Register(client) {
		return nil, false
	}
	if s.afterRegister != nil {
		s.afterRegister()
	}
	return client, true
}

func (s *TransportSuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
}

func (s *TransportSuite) waitForClients(n int) {
	s.Require().Eventually(func() bool {
		return s.hub.ClientCount() == n
	}, time.Second, 5*time.Millisecond)
}

func (s *TransportSuite) TestSSEStreamsInitialAndLiveMessages() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.server.URL+"/events", nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))
	s.waitForClients(1)

	s.hub.Broadcast(Message{Event: "alert", Data: []byte(`{"kind":"tick"}`)})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 9 {
		line, err := reader.ReadString('\n')
		s.Require().NoError(err)
		lines = append(lines, strings.TrimRight(line, "\n"))
	}

	s.Equal("event: connected", lines[0])
	s.Equal("event: snapshot", lines[3])
	s.Equal(`data: {"remaining":60}`, lines[4])
	s.Equal("event: alert", lines[6])
	s.Equal(`data: {"kind":"tick"}`, lines[7])
}

func (s *TransportSuite) TestSSEClientDisconnectUnregisters() {
	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.server.URL+"/events", nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.waitForClients(1)

	cancel()
	_ = resp.Body.Close()

	s.waitForClients(0)
}

func (s *TransportSuite) TestSSEOnClosedHub() {
	s.hub.Close()

	resp, err := http.Get(s.server.URL + "/events")
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusGone, resp.StatusCode)
}

func (s *TransportSuite) TestSSEKeepsMessagesBroadcastBeforeInitialWrite() {
	s.afterRegister = func() {
		s.hub.Broadcast(Message{Event: "timer_changed", Data: []byte(`{"run_state":"running"}`)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.server.URL+"/events", nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 9 {
		line, err := reader.ReadString('\n')
		s.Require().NoError(err)
		lines = append(lines, strings.TrimRight(line, "\n"))
	}

	s.Equal("event: snapshot", lines[3])
	s.Equal("event: timer_changed", lines[6])
	s.Equal(`data: {"run_state":"running"}`, lines[7])
}

func (s *TransportSuite) TestWebSocketKeepsMessagesBroadcastBeforeInitialWrite() {
	s.afterRegister = func() {
		s.hub.Broadcast(Message{Event: "alert", Data: []byte(`{"kind":"expired"}`)})
	}

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	s.Equal(`{"remaining":60}`, string(data))

	_, data, err = conn.ReadMessage()
	s.Require().NoError(err)
	s.Equal(`{"kind":"expired"}`, string(data))
}

func (s *TransportSuite) TestWebSocketUpgradeFailureUnregisters() {
	// A plain GET cannot be upgraded
	resp, err := http.Get(s.server.URL + "/ws")
	s.Require().NoError(err)
	_ = resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.waitForClients(0)
}

func (s *TransportSuite) TestWebSocketStreamsMessages() {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	s.Equal(`{"remaining":60}`, string(data))

	s.waitForClients(1)
	s.hub.Broadcast(Message{Event: "alert", Data: []byte(`{"kind":"expired"}`)})

	_, data, err = conn.ReadMessage()
	s.Require().NoError(err)
	s.Equal(`{"kind":"expired"}`, string(data))
}

func (s *TransportSuite) TestWebSocketClosedWhenHubCloses() {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	s.Require().NoError(err)
	s.waitForClients(1)

	s.hub.Close()

	_, _, err = conn.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func (s *TransportSuite) TestUpgraderOriginCheck() {
	upgrader := NewUpgrader([]string{"http://allowed.example"})

	allowed := httptest.NewRequest(http.MethodGet, "/ws", nil)
	allowed.Header.Set("Origin", "http://allowed.example")
	s.True(upgrader.CheckOrigin(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/ws", nil)
	denied.Header.Set("Origin", "http://evil.example")
	s.False(upgrader.CheckOrigin(denied))
}
