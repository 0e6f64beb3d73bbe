package response

import (
	"time"

	"github.com/mcoot/turntimer/internal/model"
	"github.com/mcoot/turntimer/internal/services/ledger"
)

// Player represents a player in API responses
type Player struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Points int    `json:"points"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:     int(p.ID),
		Name:   p.Name,
		Color:  string(p.Color),
		Points: p.Points,
	}
}

// Timer represents the turn timer snapshot
type Timer struct {
	ActivePlayerIndex int    `json:"active_player_index"`
	Remaining         int    `json:"remaining"`
	RunState          string `json:"run_state"`
}

// TimerFromModel converts a model.TimerState
func TimerFromModel(t model.TimerState) Timer {
	return Timer{
		ActivePlayerIndex: t.ActivePlayerIndex,
		Remaining:         t.Remaining,
		RunState:          string(t.RunState),
	}
}

// TimerResponse is the response for timer intents
type TimerResponse struct {
	Timer Timer `json:"timer"`
}

// Standing is one scoreboard row
type Standing struct {
	PlayerID int `json:"player_id"`
	Points   int `json:"points"`
}

// Session is the full session state
type Session struct {
	Code         string     `json:"code"`
	Players      []Player   `json:"players"`
	Timer        Timer      `json:"timer"`
	ActivePlayer *Player    `json:"active_player,omitempty"`
	Standings    []Standing `json:"standings,omitempty"`
	GraceDelayMS int64      `json:"grace_delay_ms"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SessionFromModel converts a model.Session and its standings
func SessionFromModel(s *model.Session, standings []ledger.Standing) Session {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}

	var active *Player
	if p := s.ActivePlayer(); p != nil {
		converted := PlayerFromModel(*p)
		active = &converted
	}

	var rows []Standing
	for _, st := range standings {
		rows = append(rows, Standing{PlayerID: int(st.PlayerID), Points: st.Points})
	}

	return Session{
		Code:         string(s.Code),
		Players:      players,
		Timer:        TimerFromModel(s.Timer),
		ActivePlayer: active,
		Standings:    rows,
		GraceDelayMS: s.GraceDelay.Milliseconds(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Health is the health check response
type Health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
