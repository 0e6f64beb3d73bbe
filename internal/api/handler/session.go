package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/turntimer/internal/api/request"
	"github.com/mcoot/turntimer/internal/api/response"
	"github.com/mcoot/turntimer/internal/model"
	"github.com/mcoot/turntimer/internal/services/session"
	"github.com/mcoot/turntimer/internal/stream"
)

// snapshotEvent names the message sent to new watchers before live events
const snapshotEvent = "snapshot"

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	controller *session.Controller
	hubManager *stream.HubManager
	upgrader   *websocket.Upgrader
	logger     *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(
	controller *session.Controller,
	hubManager *stream.HubManager,
	upgrader *websocket.Upgrader,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		controller: controller,
		hubManager: hubManager,
		upgrader:   upgrader,
		logger:     logger,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	s, err := h.controller.CreateSession(r.Context(), req.PlayerNames())
	if err != nil {
		WriteError(w, err)
		return
	}

	standings, err := h.controller.Standings(r.Context(), s.Code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/sessions/"+string(s.Code), response.SessionFromModel(s, standings))
}

// Get handles GET /api/v1/sessions/{code}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)

	s, err := h.controller.GetSession(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	standings, err := h.controller.Standings(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, standings))
}

// End handles DELETE /api/v1/sessions/{code}
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.EndSession(r.Context(), sessionCode(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Timer handles POST /api/v1/sessions/{code}/timer/{intent}
func (h *SessionHandler) Timer(w http.ResponseWriter, r *http.Request) {
	intent, err := session.ParseIntent(mux.Vars(r)["intent"])
	if err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.controller.Apply(r.Context(), sessionCode(r), intent)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TimerResponse{Timer: response.TimerFromModel(state)})
}

// AddPoints handles POST /api/v1/sessions/{code}/players/{player_id}/points
func (h *SessionHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.AddPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Delta == nil {
		WriteError(w, NewInvalidRequestError("delta is required"))
		return
	}

	player, err := h.controller.AddPoints(r.Context(), sessionCode(r), id, *req.Delta)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// RenamePlayer handles PATCH /api/v1/sessions/{code}/players/{player_id}
func (h *SessionHandler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.RenamePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	player, err := h.controller.RenamePlayer(r.Context(), sessionCode(r), id, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Events handles GET /api/v1/sessions/{code}/events (SSE)
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	client, initial, ok := h.watch(w, r, stream.TransportSSE)
	if !ok {
		return
	}

	// The stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	stream.ServeSSE(w, r, client, initial)
}

// WebSocket handles GET /api/v1/sessions/{code}/ws
func (h *SessionHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	client, initial, ok := h.watch(w, r, stream.TransportWebSocket)
	if !ok {
		return
	}

	stream.ServeWS(w, r, client, h.upgrader, h.logger, initial)
}

// watch subscribes a new watcher and builds the snapshot it starts from
// The client joins the hub before the snapshot is read, so every later
// change reaches it. Events between the two may repeat what the snapshot
// already shows.
func (h *SessionHandler) watch(w http.ResponseWriter, r *http.Request, transport string) (*stream.Client, stream.Message, bool) {
	code := sessionCode(r)

	client, ok := h.hubManager.Subscribe(code, transport)
	if !ok {
		WriteError(w, model.ErrSessionClosed)
		return nil, stream.Message{}, false
	}

	initial, err := h.snapshotMessage(r, code)
	if err != nil {
		client.Close()
		if errors.Is(err, model.ErrSessionClosed) || errors.Is(err, model.ErrSessionNotFound) {
			// Nothing will ever end this hub
			h.hubManager.RemoveHub(code)
		}
		WriteError(w, err)
		return nil, stream.Message{}, false
	}

	return client, initial, true
}

func (h *SessionHandler) snapshotMessage(r *http.Request, code model.SessionCode) (stream.Message, error) {
	s, err := h.controller.Snapshot(r.Context(), code)
	if err != nil {
		return stream.Message{}, err
	}

	standings, err := h.controller.Standings(r.Context(), code)
	if err != nil {
		return stream.Message{}, err
	}

	data, err := json.Marshal(response.SessionFromModel(s, standings))
	if err != nil {
		return stream.Message{}, err
	}
	return stream.Message{Event: snapshotEvent, Data: data}, nil
}

func sessionCode(r *http.Request) model.SessionCode {
	return model.SessionCode(mux.Vars(r)["code"])
}

func playerID(r *http.Request) (model.PlayerID, error) {
	id, err := strconv.Atoi(mux.Vars(r)["player_id"])
	if err != nil {
		return 0, NewInvalidRequestError("Invalid player ID")
	}
	return model.PlayerID(id), nil
}
