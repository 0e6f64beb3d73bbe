package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventSessionEnded   EventType = "session_ended"

	// Timer events
	EventTimerChanged EventType = "timer_changed"
	EventAlert        EventType = "alert"

	// Roster and ledger events
	EventPointsChanged EventType = "points_changed"
	EventPlayerRenamed EventType = "player_renamed"
)

// Event is the base structure for all events
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	SessionCode SessionCode `json:"session_code"`
	Payload     any         `json:"payload,omitempty"`
}

// SessionStartedPayload contains data for session started events
type SessionStartedPayload struct {
	Players []Player   `json:"players"`
	Timer   TimerState `json:"timer"`
}

// TimerChangedPayload contains data for timer changed events
type TimerChangedPayload struct {
	Timer    TimerState `json:"timer"`
	Previous TimerState `json:"previous"`
}

// AlertPayload contains data for alert events
type AlertPayload struct {
	Alert             AlertEvent `json:"alert"`
	ActivePlayerIndex int        `json:"active_player_index"`
	Remaining         int        `json:"remaining"`
}

// PointsChangedPayload contains data for points changed events
type PointsChangedPayload struct {
	PlayerID PlayerID `json:"player_id"`
	Delta    int      `json:"delta"`
	Points   int      `json:"points"`
}

// PlayerRenamedPayload contains data for player renamed events
type PlayerRenamedPayload struct {
	PlayerID PlayerID `json:"player_id"`
	OldName  string   `json:"old_name"`
	NewName  string   `json:"new_name"`
}

// SessionEndedPayload contains data for session ended events
type SessionEndedPayload struct {
	Reason string `json:"reason"`
}
