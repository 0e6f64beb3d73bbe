package model

import "time"

// SessionCode is a short human-readable identifier for a session
type SessionCode string

// Session is the observable snapshot of a live session
type Session struct {
	Code       SessionCode   `json:"code"`
	Players    []Player      `json:"players"`
	Timer      TimerState    `json:"timer"`
	GraceDelay time.Duration `json:"grace_delay"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with s
func (s *Session) Clone() *Session {
	clone := *s
	clone.Players = make([]Player, len(s.Players))
	copy(clone.Players, s.Players)
	return &clone
}

// ActivePlayer returns the player whose turn it is, or nil for an empty roster
func (s *Session) ActivePlayer() *Player {
	if s.Timer.ActivePlayerIndex < 0 || s.Timer.ActivePlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.Timer.ActivePlayerIndex]
}

// GetPlayer returns the player with the given ID, or nil if not found
func (s *Session) GetPlayer(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}
